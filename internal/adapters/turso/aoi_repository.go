package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/ocgbuilder/internal/database"
	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
)

type AOIRepository struct {
	db *sql.DB
}

func NewAOIRepository(db *sql.DB) *AOIRepository {
	return &AOIRepository{db: db}
}

// Create assigns an ID and creation time when they are missing.
func (r *AOIRepository) Create(ctx context.Context, aoi *domain.AOI) error {
	if err := aoi.Validate(); err != nil {
		return err
	}
	if aoi.ID == "" {
		aoi.ID = uuid.NewString()
	}
	if aoi.CreatedAt.IsZero() {
		aoi.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO aois (id, name, geometry, created_at) VALUES (?, ?, ?, ?)`,
		aoi.ID, aoi.Name, aoi.Geometry, formatTime(aoi.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create aoi: %w", err)
	}
	return nil
}

func (r *AOIRepository) Get(ctx context.Context, id string) (*domain.AOI, error) {
	var (
		aoi       domain.AOI
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, geometry, created_at FROM aois WHERE id = ?`, id).
		Scan(&aoi.ID, &aoi.Name, &aoi.Geometry, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get aoi: %w", err)
	}
	aoi.CreatedAt = parseTime(createdAt)
	return &aoi, nil
}

func (r *AOIRepository) List(ctx context.Context) ([]*domain.AOI, error) {
	return database.WithRetry(ctx, maxRetries, func() ([]*domain.AOI, error) {
		rows, err := r.db.QueryContext(ctx,
			`SELECT id, name, geometry, created_at FROM aois ORDER BY name, created_at`)
		if err != nil {
			return nil, fmt.Errorf("failed to list aois: %w", err)
		}
		defer func() { _ = rows.Close() }()

		var aois []*domain.AOI
		for rows.Next() {
			var (
				aoi       domain.AOI
				createdAt string
			)
			if err := rows.Scan(&aoi.ID, &aoi.Name, &aoi.Geometry, &createdAt); err != nil {
				return nil, fmt.Errorf("failed to scan aoi: %w", err)
			}
			aoi.CreatedAt = parseTime(createdAt)
			aois = append(aois, &aoi)
		}
		return aois, rows.Err()
	})
}

func (r *AOIRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM aois WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete aoi: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete aoi: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
