package domain

// Category Model
type Category struct {
	ID        uint    `gorm:"primaryKey" json:"id"`                     // Primary key
	UserID    *uint   `gorm:"index" json:"user_id"`                     // Owning user; nil marks a template row
	Name      string  `gorm:"not null" json:"name"`                     // Category name
	Icon      *string `json:"icon"`                                     // Optional display icon
	Priority  int     `gorm:"not null;default:0" json:"priority"`       // Sort priority, ascending
	IsDefault bool    `gorm:"not null;default:false" json:"is_default"` // Template flag; immutable seed data when true
}
