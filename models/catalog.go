// catalog.go - Defines the Category and SubCategory taxonomy models

package models

import "time"

type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`             // Client-generated UUID
	Name      string    `gorm:"uniqueIndex;size:50;not null" json:"name"` // Unique display name
	Image     string    `gorm:"type:text;not null" json:"image"`          // Image URL
	URL       string    `gorm:"uniqueIndex;size:50;not null" json:"url"`  // Unique slug
	Featured  bool      `gorm:"not null" json:"featured"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SubCategory struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Image      string    `gorm:"type:text;not null" json:"image"`
	URL        string    `gorm:"uniqueIndex;size:50;not null" json:"url"`
	Featured   bool      `gorm:"not null" json:"featured"`
	CategoryID string    `gorm:"size:36;not null;index" json:"categoryId"` // Parent category (foreign key)
	Category   *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"category,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
