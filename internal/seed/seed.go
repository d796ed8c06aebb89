package seed

import (
	"fmt"
	"log"

	"trove/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumItems    int
	ShouldClean bool
}

// Seeder populates the database with demo data.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder returns a Seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll deletes all seedable data. Order matters because of foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []interface{}{
		&models.Notification{},
		&models.Claim{},
		&models.Item{},
		&models.User{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Seed populates the database with demo users, items and claims. Categories
// must already be seeded (see Categories).
func (s *Seeder) Seed(opts Options) error {
	log.Printf("Seeding %d users and %d items...", opts.NumUsers, opts.NumItems)

	var categories []models.Category
	if err := s.db.Find(&categories).Error; err != nil {
		return err
	}
	if len(categories) == 0 {
		return fmt.Errorf("no categories present; run category seeding first")
	}

	factory := NewFactory(s.db)

	// One known admin account for local development.
	if err := s.ensureAdmin(); err != nil {
		return err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	if len(users) < 2 {
		return fmt.Errorf("need at least 2 users to seed claims")
	}

	items := make([]*models.Item, 0, opts.NumItems)
	for i := 0; i < opts.NumItems; i++ {
		reporter := users[factory.rand.Intn(len(users))]
		category := categories[factory.rand.Intn(len(categories))]
		item, err := factory.CreateItem(reporter, category.ID)
		if err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		items = append(items, item)
	}

	// Claim roughly a third of the found items.
	claimed := 0
	for _, item := range items {
		if item.IsLost || factory.rand.Intn(3) != 0 {
			continue
		}
		claimant := users[factory.rand.Intn(len(users))]
		if claimant.ID == item.UserID {
			continue
		}
		if _, err := factory.CreateClaim(claimant, item); err != nil {
			return fmt.Errorf("create claim: %w", err)
		}
		claimed++
	}

	log.Printf("Seeded %d users, %d items, %d claims", len(users), len(items), claimed)
	return nil
}

func (s *Seeder) ensureAdmin() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultSeedPassword), bcrypt.MinCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username: "admin",
		Email:    "admin@trove.local",
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	return s.db.Where(models.User{Email: admin.Email}).FirstOrCreate(&admin).Error
}
