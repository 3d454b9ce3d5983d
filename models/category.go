package models

import (
	"time"

	"gorm.io/gorm"
)

// Category represents a node in the self-referential category tree.
// Level is derived at write time: 1 for roots, parent.Level+1 otherwise.
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	ParentID    *uint          `gorm:"index" json:"parent_id,omitempty"`
	Parent      *Category      `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Level       int            `gorm:"not null;default:1" json:"level"`
	IsActive    bool           `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// CategoryPathEntry is one breadcrumb element on a category's ancestor path
type CategoryPathEntry struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
