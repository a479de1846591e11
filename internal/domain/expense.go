package domain

import "time"

// Expense Model
type Expense struct {
	ID         uint      `gorm:"primaryKey" json:"id"`          // Primary key
	UserID     uint      `gorm:"index;not null" json:"user_id"` // Owning user
	Amount     float64   `gorm:"not null" json:"amount"`        // Signed amount, stored as given
	Note       *string   `json:"note"`                          // Optional free-form note
	CategoryID *uint     `json:"category_id"`                   // Optional reference to a Category
	Date       time.Time `gorm:"index;not null" json:"date"`    // Expense date, defaults to time of creation
}
