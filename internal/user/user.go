package user

import (
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
)

// User is the profile of the account owner.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Currency  string    `json:"currency" db:"currency"`
	IsActive  bool      `json:"-" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Profile is the mutable part of a user.
type Profile struct {
	Name     string
	Currency string
}

var ErrNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
