package domain

import (
	"errors"
	"strings"
	"time"
)

// User represents a registered account owner
type User struct {
	ID             string
	Username       string
	Email          string
	FirstName      string
	LastName       string
	HashedPassword string
	Active         bool
	CreatedAt      time.Time
}

// SameIdentity reports whether other collides with u on username or email.
// Both comparisons ignore case.
func (u *User) SameIdentity(other *User) bool {
	return strings.EqualFold(u.Username, other.Username) || strings.EqualFold(u.Email, other.Email)
}

// Public returns a copy safe to hand to callers outside the store.
func (u *User) Public() *User {
	c := *u
	c.HashedPassword = ""
	return &c
}

// Authentication errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidCredentials = errors.New("No active account found with the given credentials")
)
