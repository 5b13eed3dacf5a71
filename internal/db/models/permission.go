package models

import "time"

// Permission is a single access right in resource.action form, e.g. "settings.update".
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the unique permission identifier.
	Name string `gorm:"unique;size:100;not null"`
	// Resource is the resource this permission applies to.
	Resource string `gorm:"size:100;not null"`
	// Action is the action allowed on the resource.
	Action string `gorm:"size:50;not null"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
