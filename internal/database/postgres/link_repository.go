package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edavydova/shortlink/internal/database"
	"github.com/edavydova/shortlink/internal/models"
	"github.com/jmoiron/sqlx"
)

type linkRecord struct {
	LinkID           string    `db:"link_id"`
	OriginalURL      string    `db:"original_url"`
	NumHits          int64     `db:"num_hits"`
	LastAccessedDate time.Time `db:"last_accessed_date"`
	OwnerID          string    `db:"owner_id"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r *linkRecord) ToLink() *models.Link {
	return &models.Link{
		ID:             r.LinkID,
		OriginalURL:    r.OriginalURL,
		NumHits:        r.NumHits,
		LastAccessedAt: r.LastAccessedDate,
		OwnerID:        r.OwnerID,
		CreatedAt:      r.CreatedAt,
	}
}

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

func (r *LinkRepository) Create(ctx context.Context, linkID, originalURL, ownerID string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Create"

	rec := new(linkRecord)
	query := `INSERT INTO links(link_id, original_url, owner_id)
		VALUES ($1, $2, $3)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, linkID, originalURL, ownerID)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkExists)
		}

		return nil, fmt.Errorf("%s: failed to create link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

func (r *LinkRepository) GetByID(ctx context.Context, linkID string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.GetByID"

	rec := new(linkRecord)
	query := `SELECT * FROM links
		WHERE link_id = $1`

	err := r.db.GetContext(ctx, rec, query, linkID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

// RecordVisit increments the hit counter and refreshes the last access
// timestamp in a single statement, so concurrent visits never lose an
// increment.
func (r *LinkRepository) RecordVisit(ctx context.Context, linkID string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.RecordVisit"

	rec := new(linkRecord)
	query := `UPDATE links
		SET num_hits = num_hits + 1, last_accessed_date = now()
		WHERE link_id = $1
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, linkID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to record link visit: %w", op, err)
	}

	return rec.ToLink(), nil
}

func (r *LinkRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Link, error) {
	const op = "database.postgres.LinkRepository.ListByOwner"

	var recs []linkRecord
	query := `SELECT * FROM links
		WHERE owner_id = $1
		ORDER BY created_at`

	err := r.db.SelectContext(ctx, &recs, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list link records: %w", op, err)
	}

	links := make([]models.Link, 0, len(recs))
	for _, rec := range recs {
		links = append(links, *rec.ToLink())
	}

	return links, nil
}

func (r *LinkRepository) BelongsToOwner(ctx context.Context, linkID, ownerID string) (bool, error) {
	const op = "database.postgres.LinkRepository.BelongsToOwner"

	var belongs bool
	query := `SELECT EXISTS(
		SELECT 1 FROM links
		WHERE link_id = $1 AND owner_id = $2
	)`

	err := r.db.GetContext(ctx, &belongs, query, linkID, ownerID)
	if err != nil {
		return false, fmt.Errorf("%s: failed to check link ownership: %w", op, err)
	}

	return belongs, nil
}

// Delete is idempotent: removing an identifier that is already absent is
// not an error.
func (r *LinkRepository) Delete(ctx context.Context, linkID string) error {
	const op = "database.postgres.LinkRepository.Delete"

	query := `DELETE FROM links
		WHERE link_id = $1`

	if _, err := r.db.ExecContext(ctx, query, linkID); err != nil {
		return fmt.Errorf("%s: failed to delete link record: %w", op, err)
	}

	return nil
}
