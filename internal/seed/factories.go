// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"trove/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// defaultSeedPassword is the known password for all seeded accounts.
const defaultSeedPassword = "TroveSeed123!"

// CreateUser persists a fake user. Overrides run before the insert.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultSeedPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: fmt.Sprintf("%s_%s", gofakeit.Username(), gofakeit.LetterN(4)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
		Role:     models.RoleUser,
		Phone:    gofakeit.Phone(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateItem persists a fake item reported by the given user.
func (f *Factory) CreateItem(reporter *models.User, categoryID uint, overrides ...func(*models.Item)) (*models.Item, error) {
	item := &models.Item{
		Title:       gofakeit.ProductName(),
		Description: gofakeit.Sentence(12),
		Location:    fmt.Sprintf("%s, %s", gofakeit.StreetName(), gofakeit.City()),
		IsLost:      f.rand.Intn(3) == 0,
		UserID:      reporter.ID,
		CategoryID:  categoryID,
	}

	// realistic created_at spread over the last 60 days
	daysBack := f.rand.Intn(60)
	hoursBack := f.rand.Intn(24)
	item.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(item)
	}
	if err := f.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// CreateClaim persists a fake pending claim by claimant on item.
func (f *Factory) CreateClaim(claimant *models.User, item *models.Item, overrides ...func(*models.Claim)) (*models.Claim, error) {
	claim := &models.Claim{
		Description: fmt.Sprintf("It has %s and I lost it near %s.", gofakeit.Color(), gofakeit.City()),
		Status:      models.ClaimStatusPending,
		ClaimDate:   time.Now().Add(-time.Duration(f.rand.Intn(72)) * time.Hour),
		UserID:      claimant.ID,
		ItemID:      item.ID,
	}
	for _, override := range overrides {
		override(claim)
	}
	if err := f.db.Create(claim).Error; err != nil {
		return nil, err
	}
	return claim, nil
}
