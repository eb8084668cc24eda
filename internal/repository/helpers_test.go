package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var fixedTime = time.Date(2024, 11, 2, 9, 30, 0, 0, time.UTC)

var donationCols = []string{"id", "email", "name", "description", "image_path", "gender", "size", "kids", "item_type", "location", "donated", "purchased", "created_at"}
