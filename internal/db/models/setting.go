// Package models contains database model definitions.
package models

import "time"

// Setting is the persisted row of one named configuration value.
// Value and History hold JSON, interpreted according to Type by the settings package.
type Setting struct {
	// ID is a UUID assigned when the setting is seeded.
	ID string `gorm:"primaryKey;size:36"`
	// Key is the unique, immutable identifier of the setting.
	Key string `gorm:"column:key;uniqueIndex;size:100;not null"`
	// Value is the JSON encoded current value.
	Value []byte `gorm:"not null"`
	// Type is one of boolean, text or image.
	Type string `gorm:"size:20;not null"`
	// Category groups settings for presentation only.
	Category string `gorm:"size:50;not null;index"`
	// Label is a human-readable name shown in the admin UI.
	Label string `gorm:"size:255"`
	// Description explains the setting in the admin UI.
	Description string `gorm:"size:1024"`
	// CurrentVersion starts at 1 and grows by exactly one per accepted mutation.
	CurrentVersion int `gorm:"not null;default:1"`
	// History is the JSON array of superseded values, newest first.
	History []byte `gorm:"not null"`
	// UpdatedAt is set by the write protocol, not by gorm.
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`
	// UpdatedBy references the admin that made the last change, empty after seeding.
	UpdatedBy string `gorm:"size:100"`
	// CreatedAt is the seeding time.
	CreatedAt time.Time
}

// TableName specifies the database table name for the Setting model.
func (Setting) TableName() string {
	return "site_settings"
}
