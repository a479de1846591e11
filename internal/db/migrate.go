package db

import (
	"myfinance/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// defaultCategories is the template set copied into every new user's namespace
var defaultCategories = []domain.Category{
	{Name: "Food", Icon: strPtr("🍔"), Priority: 1, IsDefault: true},
	{Name: "Transport", Icon: strPtr("🚌"), Priority: 2, IsDefault: true},
	{Name: "Housing", Icon: strPtr("🏠"), Priority: 3, IsDefault: true},
	{Name: "Entertainment", Icon: strPtr("🎮"), Priority: 4, IsDefault: true},
	{Name: "Health", Icon: strPtr("💊"), Priority: 5, IsDefault: true},
	{Name: "Shopping", Icon: strPtr("🛍️"), Priority: 6, IsDefault: true},
	{Name: "Other", Icon: strPtr("📦"), Priority: 7, IsDefault: true},
}

func strPtr(s string) *string { return &s }

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	return db.AutoMigrate(
		&domain.Credential{},
		&domain.User{},
		&domain.Category{},
		&domain.Expense{},
	)
}

// Seed inserts the template category rows if none exist yet.
// Template rows have no owner and is_default=true; they are never
// mutated afterwards.
func Seed(db *gorm.DB) error {
	var count int64
	// Check whether templates are already present
	if err := db.Model(&domain.Category{}).Where("is_default = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // Already seeded
	}
	categories := make([]domain.Category, len(defaultCategories))
	copy(categories, defaultCategories)
	return db.Create(&categories).Error // Bulk-insert the template set
}
