// role_sync.go - Outbox row describing one pending role push to the identity provider

package models

import "time"

// RoleSync records the intent to mirror a user's role into the provider metadata store.
// Rows are written in the same transaction as the user change and delivered by the outbox dispatcher.
type RoleSync struct {
	ID            string     `gorm:"primaryKey;size:36"`
	UserID        string     `gorm:"size:191;not null;index"`
	Role          Role       `gorm:"size:16;not null"`
	Attempts      int        `gorm:"not null;default:0"`
	LastError     string     `gorm:"type:text"`
	NextAttemptAt time.Time  `gorm:"index"`
	DeliveredAt   *time.Time `gorm:"index"`
	CreatedAt     time.Time  `gorm:"index"`
}
