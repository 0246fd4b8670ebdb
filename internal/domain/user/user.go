package user

import (
	"errors"
	"time"

	"github.com/geocoder89/familyauth/internal/domain/family"
	"github.com/geocoder89/familyauth/internal/domain/profile"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Satisfies reports whether a caller holding r passes a gate that requires
// the given role. Only admin is restrictive; every other requirement is met
// by any valid role.
func (r Role) Satisfies(required Role) bool {
	if !r.Valid() {
		return false
	}

	switch required {
	case RoleAdmin:
		return r == RoleAdmin
	default:
		return true
	}
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Identity is the caller resolved from a bearer token.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewAccount is everything registration writes in one go.
type NewAccount struct {
	Email         string
	PasswordHash  string
	Role          Role
	Profile       *profile.Profile
	FamilyMembers []family.Member
}

// WithProfile is the admin listing row. Password is always blank.
type WithProfile struct {
	ID        int64            `json:"id"`
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	Role      Role             `json:"role"`
	CreatedAt time.Time        `json:"created_at"`
	Profile   *profile.Profile `json:"profile"`
}
