package models

import "time"

// Link represents a shortened link and its visit statistics.
type Link struct {
	// ID is the short, URL-safe identifier of the link. It is derived
	// deterministically from the original URL and the owner's user ID.
	ID string
	// OriginalURL is the full URL that the identifier resolves to.
	OriginalURL string
	// NumHits is the number of times the link has been resolved.
	NumHits int64
	// LastAccessedAt is set at creation and updated on every resolution.
	LastAccessedAt time.Time
	// OwnerID references the user that created the link.
	OwnerID string
	// CreatedAt is the timestamp indicating when the link was created.
	CreatedAt time.Time
}
