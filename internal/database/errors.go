package database

import "errors"

var (
	// ErrLinkExists is returned when an attempt is made to create a link
	// with an identifier that already belongs to another record.
	ErrLinkExists = errors.New("link exists")
	// ErrLinkNotFound is returned when an attempt is made to retrieve
	// a link using an identifier that doesn't exist.
	ErrLinkNotFound = errors.New("link not found")
	// ErrUserNotFound is returned when an attempt is made to retrieve
	// a user that doesn't exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when an attempt is made to register
	// a user with a username that already exists.
	ErrUsernameTaken = errors.New("username taken")
)
