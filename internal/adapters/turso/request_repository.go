package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/ocgbuilder/internal/database"
	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

// RequestRepository keeps the history of generated request URLs.
type RequestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(ctx context.Context, record *domain.RequestRecord) error {
	if record.URL == "" {
		return fmt.Errorf("request url is required")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO request_history (id, url, format, created_at) VALUES (?, ?, ?, ?)`,
		record.ID, record.URL, record.Format, formatTime(record.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

// List returns the newest records first. A limit <= 0 returns everything.
func (r *RequestRepository) List(ctx context.Context, limit int) ([]*domain.RequestRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	return database.WithRetry(ctx, maxRetries, func() ([]*domain.RequestRecord, error) {
		rows, err := r.db.QueryContext(ctx,
			`SELECT id, url, format, created_at FROM request_history ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list requests: %w", err)
		}
		defer func() { _ = rows.Close() }()

		var records []*domain.RequestRecord
		for rows.Next() {
			var (
				rec       domain.RequestRecord
				createdAt string
			)
			if err := rows.Scan(&rec.ID, &rec.URL, &rec.Format, &createdAt); err != nil {
				return nil, fmt.Errorf("failed to scan request: %w", err)
			}
			rec.CreatedAt = parseTime(createdAt)
			records = append(records, &rec)
		}
		return records, rows.Err()
	})
}
