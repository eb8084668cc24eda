package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_Create_Success(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, email, password_hash) VALUES (?,?,?)")).
		WithArgs("alice", "a@x.com", "hash").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), " alice ", "A@X.com", "hash")
	require.NoError(t, err)
	require.Equal(t, uint64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.com' for key 'uq_users_email'"})

	_, err := repo.Create(context.Background(), "alice", "a@x.com", "hash")
	require.ErrorIs(t, err, ErrUserExists)
}

func TestUserRepo_Create_OtherError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "alice", "a@x.com", "hash")
	require.EqualError(t, err, "db down")
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "points", "created_at"}).
		AddRow(3, "alice", "a@x.com", "hash", 20, fixedTime)
	mock.ExpectQuery(`SELECT .* FROM users WHERE email=\? LIMIT 1`).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	u, err := repo.GetByEmail(context.Background(), "A@x.com ")
	require.NoError(t, err)
	require.Equal(t, uint64(3), u.ID)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, int64(20), u.Points)
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id=\? LIMIT 1`).
		WithArgs(uint64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepo_IncrementPointsTx(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET points = points + ? WHERE email=?")).
		WithArgs(int64(10), "a@x.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.IncrementPointsTx(context.Background(), tx, " A@x.com", 10))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_IncrementPointsTx_UnknownEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE users SET points").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.ErrorIs(t, repo.IncrementPointsTx(context.Background(), tx, "ghost@x.com", 10), ErrUserNotFound)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
