package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestCountUnread(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(countUnreadQuery)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	s := NewPostgresUnreadStoreFromDB(db)
	count, err := s.CountUnread(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CountUnread() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("CountUnread() = %d, want 3", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCountUnreadZeroForUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(countUnreadQuery)).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	s := NewPostgresUnreadStoreFromDB(db)
	count, err := s.CountUnread(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("CountUnread() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("CountUnread() = %d, want 0", count)
	}
}

func TestCountUnreadPropagatesQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	dbErr := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(countUnreadQuery)).
		WithArgs("u1").
		WillReturnError(dbErr)

	s := NewPostgresUnreadStoreFromDB(db)
	if _, err := s.CountUnread(context.Background(), "u1"); !errors.Is(err, dbErr) {
		t.Fatalf("CountUnread() error = %v, want wrapped %v", err, dbErr)
	}
}

func TestCountUnreadHonorsContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(countUnreadQuery)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewPostgresUnreadStoreFromDB(db)
	if _, err := s.CountUnread(ctx, "u1"); err == nil {
		t.Fatal("cancelled context should fail the query")
	}
}
