// Package database opens the libsql database that holds AOIs and request history.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"
)

// Options configures the database client behavior.
type Options struct {
	Ping bool
}

// Open connects with default options (ping enabled).
func Open(databaseURL, authToken string) (*sql.DB, error) {
	return OpenWithOptions(databaseURL, authToken, Options{Ping: true})
}

// OpenWithOptions accepts a local file URL (file:/path/db) or a remote Turso
// URL. The auth token is only sent to remote databases.
func OpenWithOptions(databaseURL, authToken string, opts Options) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is required")
	}

	remote := IsRemote(databaseURL)
	connStr := databaseURL
	if remote && authToken != "" {
		sep := "?"
		if strings.Contains(connStr, "?") {
			sep = "&"
		}
		connStr += sep + "authToken=" + url.QueryEscape(authToken)
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if remote {
		// Turso closes idle Hrana streams aggressively; stale pooled
		// connections surface as "stream not found".
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(0)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(1)
	}

	if opts.Ping {
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}
	return db, nil
}

// IsRemote reports whether databaseURL points at a libsql server.
func IsRemote(databaseURL string) bool {
	for _, scheme := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return true
		}
	}
	return false
}

// IsStreamError checks if an error is a Turso "stream not found" error.
func IsStreamError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "stream not found")
}

// WithRetry retries fn up to maxRetries times on Turso stream errors.
func WithRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var result T
	var err error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err = fn()
		if err == nil {
			return result, nil
		}
		if !IsStreamError(err) || attempt == maxRetries {
			return result, err
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return result, err
}
