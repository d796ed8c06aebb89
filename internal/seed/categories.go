package seed

import (
	_ "embed"
	"fmt"

	"trove/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed categories.yml
var categoriesYAML []byte

type categoryFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type categoriesFile struct {
	Categories []categoryFixture `yaml:"categories"`
}

// BuiltInCategories returns the permanent category taxonomy shipped with the
// application.
func BuiltInCategories() ([]categoryFixture, error) {
	var file categoriesFile
	if err := yaml.Unmarshal(categoriesYAML, &file); err != nil {
		return nil, fmt.Errorf("parse embedded categories: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("embedded categories file is empty")
	}
	return file.Categories, nil
}

// Categories upserts the built-in category taxonomy. Safe to run repeatedly;
// existing categories keep their IDs.
func Categories(db *gorm.DB) error {
	fixtures, err := BuiltInCategories()
	if err != nil {
		return err
	}

	for _, fixture := range fixtures {
		category := models.Category{
			Name:        fixture.Name,
			Description: fixture.Description,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
		}).Create(&category).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", fixture.Name, err)
		}
	}
	return nil
}
