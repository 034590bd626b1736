package models

import "time"

// Role is the access level assigned to a user account.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// User is the persisted account record. Username is optional but unique when
// present (stored as a pointer so NULLs do not collide in the unique index).
type User struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Username       *string `gorm:"size:64;uniqueIndex" json:"username,omitempty"`
	Email          string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName       string  `gorm:"size:255" json:"full_name,omitempty"`
	HashedPassword string  `gorm:"size:255;not null" json:"-"`
	Role           Role    `gorm:"size:16;not null;default:user" json:"role"`
	Disabled       bool    `gorm:"not null;default:false" json:"disabled"`
	PublicAddress  string  `gorm:"size:66" json:"public_address,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Submitted transaction statuses.
const (
	TxStatusSubmitted = "submitted"
	TxStatusConfirmed = "confirmed"
	TxStatusFailed    = "failed"
)

// SubmittedTransaction records every gateway broadcast, keyed by the caller's
// idempotency key so a client retry after a timeout returns the original hash
// instead of double-spending.
type SubmittedTransaction struct {
	ID             string  `gorm:"primaryKey;size:36"`
	IdempotencyKey *string `gorm:"size:128;uniqueIndex:idx_submitted_tx_idem"`
	Operation      string  `gorm:"size:16;not null;uniqueIndex:idx_submitted_tx_idem"`
	FromAddress    string  `gorm:"size:42"`
	ToAddress      string  `gorm:"size:42"`
	AmountWei      string  `gorm:"size:78"`
	TxHash         string  `gorm:"size:66"`
	Status         string  `gorm:"size:16;not null;default:submitted"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
