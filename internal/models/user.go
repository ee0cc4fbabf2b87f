// Package models defines the domain models shared between the storage and
// business logic layers.
package models

import "time"

// User represents a registered account.
type User struct {
	// ID is the unique, immutable identifier of the user.
	ID string
	// Username is the unique name chosen at registration.
	Username string
	// PasswordHash is the bcrypt hash of the user's password. It never
	// leaves the storage and authentication layers.
	PasswordHash string
	// IsPro reports whether the account is on the pro tier.
	IsPro bool
	// IsAdmin reports whether the account has administrative rights.
	IsAdmin bool
	// LinkCount is the number of links currently owned by the user.
	LinkCount int64
	// CreatedAt is the timestamp indicating when the account was created.
	CreatedAt time.Time
}

// AuthUser is the minimal identity snapshot attached to an authenticated
// session. It carries everything the authorization checks need without
// exposing the stored credential.
type AuthUser struct {
	UserID   string
	Username string
	IsPro    bool
	IsAdmin  bool
}
