// Package models contains data structures for the application's domain models.
package models

import "time"

// Notification is a stored message for a user about claim or item activity.
// Delivery beyond storage (email, push) is out of scope for this service.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	ClaimID   *uint     `gorm:"index" json:"claim_id,omitempty"`
	ItemID    *uint     `gorm:"index" json:"item_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}
