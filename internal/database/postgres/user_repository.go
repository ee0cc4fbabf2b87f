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

type userRecord struct {
	UserID       string    `db:"user_id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	IsPro        bool      `db:"is_pro"`
	IsAdmin      bool      `db:"is_admin"`
	LinkCount    int64     `db:"link_count"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *userRecord) ToUser() *models.User {
	return &models.User{
		ID:           r.UserID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		IsPro:        r.IsPro,
		IsAdmin:      r.IsAdmin,
		LinkCount:    r.LinkCount,
		CreatedAt:    r.CreatedAt,
	}
}

// userQuery fetches a user together with the number of links they own,
// which the quota admission check reads.
const userQuery = `SELECT u.*,
		(SELECT count(*) FROM links l WHERE l.owner_id = u.user_id) AS link_count
	FROM users u`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, userID, username, passwordHash string) (*models.User, error) {
	const op = "database.postgres.UserRepository.Create"

	rec := new(userRecord)
	query := `INSERT INTO users(user_id, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, userID, username, passwordHash)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUsernameTaken)
		}

		return nil, fmt.Errorf("%s: failed to create user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	const op = "database.postgres.UserRepository.GetByID"

	rec := new(userRecord)
	query := userQuery + ` WHERE u.user_id = $1`

	err := r.db.GetContext(ctx, rec, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "database.postgres.UserRepository.GetByUsername"

	rec := new(userRecord)
	query := userQuery + ` WHERE u.username = $1`

	err := r.db.GetContext(ctx, rec, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, database.ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get user record: %w", op, err)
	}

	return rec.ToUser(), nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	const op = "database.postgres.UserRepository.ListAll"

	var recs []userRecord
	query := userQuery + ` ORDER BY u.username`

	err := r.db.SelectContext(ctx, &recs, query)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list user records: %w", op, err)
	}

	users := make([]models.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, *rec.ToUser())
	}

	return users, nil
}
