// Package models contains data structures for the application's domain models.
package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Item represents a reported object, either lost by its owner (IsLost=true)
// or found by someone else (IsLost=false). Only found items accept claims.
type Item struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"not null" json:"location"`
	IsLost      bool   `gorm:"not null;index" json:"is_lost"`
	ImagePath   string `json:"-"`

	// Claimed is true iff exactly one claim on this item is approved.
	// ClaimedByUserID and ClaimedDate are set and cleared together with it;
	// all three mutate only through the item repository's MarkClaimed and
	// RevertClaimed guard operations.
	Claimed         bool       `gorm:"not null;default:false;index" json:"claimed"`
	ClaimedByUserID *uint      `json:"claimed_by_user_id,omitempty"`
	ClaimedDate     *time.Time `json:"claimed_date,omitempty"`

	UserID     uint     `gorm:"not null;index" json:"user_id"`
	User       User     `gorm:"foreignKey:UserID" json:"user"`
	CategoryID uint     `gorm:"not null;index" json:"category_id"`
	Category   Category `gorm:"foreignKey:CategoryID" json:"category"`

	ClaimedByUser *User `gorm:"foreignKey:ClaimedByUserID" json:"claimed_by_user,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (Item) TableName() string {
	return "items"
}

// ImageURL returns the public URL for the item's photo, or "" when none is stored.
func (i *Item) ImageURL() string {
	if i.ImagePath == "" {
		return ""
	}
	return "/api/items/" + strconv.FormatUint(uint64(i.ID), 10) + "/image"
}
