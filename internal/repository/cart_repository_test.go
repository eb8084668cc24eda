package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/donation-marketplace/internal/model"
)

func TestCartRepo_ExistsAndCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM cart_items`).
		WithArgs(uint64(3), "v@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO cart_items`).
		WithArgs(uint64(3), "v@x.com").
		WillReturnResult(sqlmock.NewResult(21, 1))

	ok, err := repo.Exists(context.Background(), 3, "V@x.com")
	require.NoError(t, err)
	require.False(t, ok)

	item := &model.CartItem{DonationID: 3, ViewerEmail: "V@x.com"}
	require.NoError(t, repo.Create(context.Background(), item))
	require.Equal(t, uint64(21), item.ID)
	require.Equal(t, "v@x.com", item.ViewerEmail)
}

func TestCartRepo_Create_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	mock.ExpectExec(`INSERT INTO cart_items`).WillReturnError(&mysql.MySQLError{Number: 1062})

	err := repo.Create(context.Background(), &model.CartItem{DonationID: 3, ViewerEmail: "v@x.com"})
	require.ErrorIs(t, err, ErrDuplicateCartItem)
}

func TestCartRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	mock.ExpectQuery(`FROM cart_items WHERE id = \?`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 1)
	require.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartRepo_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	mock.ExpectExec(`DELETE FROM cart_items WHERE id = \?`).WithArgs(uint64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM cart_items WHERE id = \?`).WithArgs(uint64(2)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 1))
	require.ErrorIs(t, repo.Delete(context.Background(), 2), ErrCartItemNotFound)
}

func TestCartRepo_ListByViewer(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCartRepo(db)

	cols := append([]string{"c.id", "c.donation_id", "c.viewer_email", "c.created_at"}, donationCols...)
	rows := sqlmock.NewRows(cols).
		AddRow(1, 9, "v@x.com", fixedTime, 9, "a@x.com", "Jacket", "warm", "img/9.png", "Male", "Large", false, "Clothing", "Lyon", false, false, fixedTime)
	mock.ExpectQuery(`FROM cart_items c\s+JOIN donations d ON d.id = c.donation_id\s+WHERE c.viewer_email = \?`).
		WithArgs("v@x.com").
		WillReturnRows(rows)

	got, err := repo.ListByViewer(context.Background(), "v@x.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, uint64(1), got[0].ID)
	require.Equal(t, "Jacket", got[0].Donation.Name)
	require.Equal(t, "a@x.com", got[0].Donation.OwnerEmail)
}
