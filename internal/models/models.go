package models

import "time"

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleCustomer = "customer"
)

// ValidRole reports whether role belongs to the closed role set. Anything
// outside the set carries no permissions.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleCustomer:
		return true
	}
	return false
}

type Tenant struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:100;not null"        json:"name"`
	Address   string    `gorm:"size:255;not null"        json:"address"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string    `gorm:"not null"                 json:"firstName"`
	LastName     string    `gorm:"not null"                 json:"lastName"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null"                 json:"role"`
	TenantID     *uint     `gorm:"index"                    json:"tenantId,omitempty"`
	Tenant       *Tenant   `gorm:"constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// RefreshToken is the revocation ledger row. Row presence is the sole source
// of truth for refresh-token validity: deleting the row revokes the token.
// The FK cascade keeps the ledger free of orphans when a user is deleted.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID    uint      `gorm:"index;not null"              json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ExpiresAt time.Time `gorm:"not null"                    json:"expires_at"`
	CreatedAt time.Time `json:"-"`
}
