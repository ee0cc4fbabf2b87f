package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/edavydova/shortlink/internal/database"
	"github.com/edavydova/shortlink/internal/models"
)

// freeTierLinkLimit is the maximum number of links a free-tier account may
// own at the moment a creation request is admitted.
const freeTierLinkLimit = 5

var (
	// ErrQuotaExceeded is returned when a free-tier user has reached their
	// link-creation quota.
	ErrQuotaExceeded = errors.New("link quota exceeded")
	// ErrNotLinkOwner is returned when a user attempts to delete a link
	// they don't own.
	ErrNotLinkOwner = errors.New("not the link owner")
)

// LinkRepository defines the interface for working with links at the
// business logic layer.
type LinkRepository interface {
	// Create inserts a new link record with a zero hit count.
	Create(ctx context.Context, linkID, originalURL, ownerID string) (*models.Link, error)

	// GetByID retrieves a link by its identifier.
	GetByID(ctx context.Context, linkID string) (*models.Link, error)

	// RecordVisit atomically increments the hit count and refreshes the
	// last access timestamp, returning the post-update record.
	RecordVisit(ctx context.Context, linkID string) (*models.Link, error)

	// ListByOwner returns all links owned by the given user.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error)

	// BelongsToOwner reports whether the identifier exists and is owned
	// by the given user.
	BelongsToOwner(ctx context.Context, linkID, ownerID string) (bool, error)

	// Delete removes a link; deleting an absent identifier is not an error.
	Delete(ctx context.Context, linkID string) error
}

// OwnerDirectory is the subset of the user store the link service needs to
// load an account before admitting a creation request.
type OwnerDirectory interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// LinkService provides methods to create, resolve, list and delete
// shortened links.
type LinkService struct {
	links LinkRepository
	users OwnerDirectory
}

// NewLinkService creates a new instance of LinkService with the provided
// link repository and user directory.
func NewLinkService(links LinkRepository, users OwnerDirectory) *LinkService {
	return &LinkService{
		links: links,
		users: users,
	}
}

// canCreateLink is the quota admission check: pro and admin accounts are
// unlimited, free-tier accounts are capped. The check and the subsequent
// insert are separate store calls, so two racing requests can both pass
// and push a free-tier account past the cap.
func canCreateLink(user *models.User) bool {
	if user.IsPro || user.IsAdmin {
		return true
	}
	return user.LinkCount < freeTierLinkLimit
}

// ShortenURL creates a shortened link for the given owner. Shortening the
// same URL twice for the same owner returns the existing record instead of
// failing; an identifier collision between distinct (url, owner) pairs is
// surfaced as database.ErrLinkExists.
func (s *LinkService) ShortenURL(ctx context.Context, ownerID, originalURL string) (*models.Link, error) {
	const op = "service.LinkService.ShortenURL"

	user, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load link owner: %w", op, err)
	}

	if !canCreateLink(user) {
		return nil, fmt.Errorf("%s: %w", op, ErrQuotaExceeded)
	}

	linkID := GenerateLinkID(originalURL, user.ID)

	link, err := s.links.Create(ctx, linkID, originalURL, user.ID)
	if err != nil {
		if errors.Is(err, database.ErrLinkExists) {
			existing, getErr := s.links.GetByID(ctx, linkID)
			if getErr != nil {
				return nil, fmt.Errorf("%s: failed to inspect existing link: %w", op, getErr)
			}

			if existing.OriginalURL == originalURL && existing.OwnerID == user.ID {
				return existing, nil
			}

			return nil, fmt.Errorf("%s: identifier collision: %w", op, database.ErrLinkExists)
		}

		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	return link, nil
}

// Resolve looks up a link by its identifier and records the visit,
// returning the post-visit record.
func (s *LinkService) Resolve(ctx context.Context, linkID string) (*models.Link, error) {
	const op = "service.LinkService.Resolve"

	if linkID == "" {
		return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	if _, err := s.links.GetByID(ctx, linkID); err != nil {
		return nil, fmt.Errorf("%s: failed to resolve link: %w", op, err)
	}

	link, err := s.links.RecordVisit(ctx, linkID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to record link visit: %w", op, err)
	}

	return link, nil
}

// ListUserLinks returns all links owned by the given user.
func (s *LinkService) ListUserLinks(ctx context.Context, userID string) ([]models.Link, error) {
	const op = "service.LinkService.ListUserLinks"

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("%s: failed to load user: %w", op, err)
	}

	links, err := s.links.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list user links: %w", op, err)
	}

	return links, nil
}

// DeleteLink removes a link on behalf of the requester. Only the link's
// owner or an admin may delete it.
func (s *LinkService) DeleteLink(ctx context.Context, requester models.AuthUser, linkID string) error {
	const op = "service.LinkService.DeleteLink"

	if _, err := s.links.GetByID(ctx, linkID); err != nil {
		return fmt.Errorf("%s: failed to load link: %w", op, err)
	}

	if !requester.IsAdmin {
		owns, err := s.links.BelongsToOwner(ctx, linkID, requester.UserID)
		if err != nil {
			return fmt.Errorf("%s: failed to check link ownership: %w", op, err)
		}
		if !owns {
			return fmt.Errorf("%s: %w", op, ErrNotLinkOwner)
		}
	}

	if err := s.links.Delete(ctx, linkID); err != nil {
		return fmt.Errorf("%s: failed to delete link: %w", op, err)
	}

	return nil
}
