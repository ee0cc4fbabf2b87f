package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/edavydova/shortlink/internal/database"
	"github.com/edavydova/shortlink/internal/models"
)

var userColumns = []string{"user_id", "username", "password_hash", "is_pro", "is_admin", "created_at"}

var userColumnsWithCount = []string{"user_id", "username", "password_hash", "is_pro", "is_admin", "created_at", "link_count"}

func setupUserRepository(t testing.TB) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}

	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewUserRepository(db)

	t.Cleanup(func() {
		mockDB.Close()
		db.Close()
	})

	return repo, mock
}

func TestUserRepository_Create(t *testing.T) {
	t.Run("username taken", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("user1", "alice", "hash").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationErrCode})

		user, err := repo.Create(context.TODO(), "user1", "alice", "hash")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrUsernameTaken)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("user1", "alice", "hash").
			WillReturnError(errUnknown)

		user, err := repo.Create(context.TODO(), "user1", "alice", "hash")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		rows := sqlmock.NewRows(userColumns).
			AddRow("user1", "alice", "hash", false, false, time.Time{})

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("user1", "alice", "hash").
			WillReturnRows(rows)

		wantUser := models.User{
			ID:           "user1",
			Username:     "alice",
			PasswordHash: "hash",
		}

		user, err := repo.Create(context.TODO(), "user1", "alice", "hash")

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, wantUser, *user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	t.Run("user not found", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByID(context.TODO(), "ghost")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		rows := sqlmock.NewRows(userColumnsWithCount).
			AddRow("user1", "alice", "hash", true, false, time.Time{}, 3)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("user1").
			WillReturnRows(rows)

		user, err := repo.GetByID(context.TODO(), "user1")

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)
		assert.True(t, user.IsPro)
		assert.Equal(t, int64(3), user.LinkCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByUsername(t *testing.T) {
	t.Run("user not found", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByUsername(context.TODO(), "ghost")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("alice").
			WillReturnError(errUnknown)

		user, err := repo.GetByUsername(context.TODO(), "alice")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		rows := sqlmock.NewRows(userColumnsWithCount).
			AddRow("user1", "alice", "hash", false, true, time.Time{}, 0)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs("alice").
			WillReturnRows(rows)

		user, err := repo.GetByUsername(context.TODO(), "alice")

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "user1", user.ID)
		assert.True(t, user.IsAdmin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_ListAll(t *testing.T) {
	t.Run("unknown error", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WillReturnError(errUnknown)

		users, err := repo.ListAll(context.TODO())

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, users)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no users", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WillReturnRows(sqlmock.NewRows(userColumnsWithCount))

		users, err := repo.ListAll(context.TODO())

		assert.NoError(t, err)
		assert.Empty(t, users)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		repo, mock := setupUserRepository(t)

		rows := sqlmock.NewRows(userColumnsWithCount).
			AddRow("user1", "alice", "hash", false, false, time.Time{}, 2).
			AddRow("user2", "bob", "hash", true, false, time.Time{}, 7)

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WillReturnRows(rows)

		users, err := repo.ListAll(context.TODO())

		assert.NoError(t, err)
		assert.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, int64(7), users[1].LinkCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
