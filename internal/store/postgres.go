package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

const countUnreadQuery = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`

// PostgresUnreadStore counts unread notifications directly against the
// application's notifications table.
type PostgresUnreadStore struct {
	db *sql.DB
}

// NewPostgresUnreadStore opens a connection pool for the given DSN and
// verifies connectivity before returning.
func NewPostgresUnreadStore(ctx context.Context, dsn string) (*PostgresUnreadStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresUnreadStore{db: db}, nil
}

// NewPostgresUnreadStoreFromDB wraps an existing handle; used by tests.
func NewPostgresUnreadStoreFromDB(db *sql.DB) *PostgresUnreadStore {
	return &PostgresUnreadStore{db: db}
}

// CountUnread returns the unread notification count for a user. Callers
// are expected to bound ctx with a deadline.
func (s *PostgresUnreadStore) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, countUnreadQuery, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread for %s: %w", userID, err)
	}
	return count, nil
}

// Close releases the connection pool.
func (s *PostgresUnreadStore) Close() error {
	return s.db.Close()
}
