// user.go - Defines the User model and the Role enum

package models // Declares the package name

import "time"

// Role gates which dashboard area and mutations a caller may reach.
type Role string

const (
	RoleUser   Role = "USER"   // Public site only
	RoleSeller Role = "SELLER" // Seller area, owns stores
	RoleAdmin  Role = "ADMIN"  // Admin area, catalog mutations
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type User struct { // User struct represents a user synced from the identity provider
	ID        string    `gorm:"primaryKey;size:191" json:"id"`                           // Provider-issued id (primary key)
	Name      string    `gorm:"size:191;not null" json:"name"`                           // Display name
	Email     string    `gorm:"uniqueIndex;size:320;not null" json:"email"`              // Natural join key of the sync flow (must be unique)
	Picture   string    `gorm:"type:text" json:"picture"`                                // Avatar URL
	Role      Role      `gorm:"size:16;not null;default:'USER'" json:"role"`             // Authoritative role (USER/SELLER/ADMIN)
	Stores    []Store   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"` // Owned stores
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
