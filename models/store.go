// store.go - Defines the seller Store model

package models

import "time"

type StoreStatus string

const (
	StoreStatusPending  StoreStatus = "PENDING"
	StoreStatusActive   StoreStatus = "ACTIVE"
	StoreStatusBanned   StoreStatus = "BANNED"
	StoreStatusDisabled StoreStatus = "DISABLED"
)

type Store struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	Name        string      `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Email       string      `gorm:"uniqueIndex;size:320;not null" json:"email"`
	Phone       string      `gorm:"size:32;not null" json:"phone"`
	URL         string      `gorm:"uniqueIndex;size:50;not null" json:"url"`
	Logo        string      `gorm:"type:text" json:"logo"`
	Cover       string      `gorm:"type:text" json:"cover"`
	Status      StoreStatus `gorm:"size:16;not null;default:'PENDING'" json:"status"`
	Featured    bool        `gorm:"not null" json:"featured"`
	UserID      string      `gorm:"size:191;not null;index" json:"userId"` // Owner (foreign key to users)
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
