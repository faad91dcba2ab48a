package repository

import (
	"context"
	"database/sql"
	"fruit-api/model"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "email", "hashed_password", "created_at"}

func TestUserRepository_CreateUser(t *testing.T) {
	query := regexp.QuoteMeta(`INSERT INTO users (email, hashed_password) VALUES ($1, $2) RETURNING id, created_at`)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		id := uuid.New()
		dbMock.ExpectQuery(query).WithArgs("alice@example.com", "hash").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), time.Now()))

		user := &model.User{Email: "alice@example.com", HashedPassword: "hash"}
		err = NewUserRepository(db).CreateUser(ctx, user)

		assert.NoError(t, err)
		assert.Equal(t, id, user.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		dbMock.ExpectQuery(query).WillReturnError(&pq.Error{Code: "23505"})

		err = NewUserRepository(db).CreateUser(ctx, &model.User{Email: "alice@example.com"})

		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	dbMock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(email) = lower($1)`)).WithArgs("Alice@Example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "alice@example.com", "hash", time.Now()))
	dbMock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(email) = lower($1)`)).WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	repo := NewUserRepository(db)
	user, err := repo.GetUserByEmail(context.Background(), "Alice@Example.com")
	assert.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "hash", user.HashedPassword)

	_, err = repo.GetUserByEmail(context.Background(), "bob@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepository_LockAndUpdatePassword(t *testing.T) {
	db, tx, dbMock := newMockTx(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	id := uuid.New()

	dbMock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1 FOR UPDATE`)).WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "alice@example.com", "old", time.Now()))
	dbMock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET hashed_password = $1 WHERE id = $2`)).
		WithArgs("new", id.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET hashed_password = $1 WHERE id = $2`)).
		WithArgs("new", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 0))

	user, err := repo.GetUserByID(ctx, tx, id)
	require.NoError(t, err)
	assert.Equal(t, "old", user.HashedPassword)

	assert.NoError(t, repo.UpdatePassword(ctx, tx, id, "new"))
	assert.ErrorIs(t, repo.UpdatePassword(ctx, tx, uuid.New(), "new"), sql.ErrNoRows)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
