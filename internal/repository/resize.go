package repository

import (
	"context"
	"fmt"

	"pixelcanva-indexer/internal/models"
)

// CanvasDimensions returns the most recently activated canvas size.
func (r *Repository) CanvasDimensions(ctx context.Context) (width, height uint32, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT width, height FROM canvas_resizes ORDER BY activated_at DESC LIMIT 1`).
		Scan(&width, &height)
	if err != nil {
		return 0, 0, fmt.Errorf("query canvas dimensions: %w", err)
	}
	return width, height, nil
}

// ResizeHistory returns every resize record, ascending by activation time —
// the order the anti-backdating walk in the pixel validator expects.
func (r *Repository) ResizeHistory(ctx context.Context) ([]models.ResizeRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT width, height, activated_at FROM canvas_resizes ORDER BY activated_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query resize history: %w", err)
	}
	defer rows.Close()

	var history []models.ResizeRecord
	for rows.Next() {
		var rec models.ResizeRecord
		if err := rows.Scan(&rec.Width, &rec.Height, &rec.ActivatedAt); err != nil {
			return nil, fmt.Errorf("scan resize record: %w", err)
		}
		history = append(history, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resize history: %w", err)
	}
	return history, nil
}

// AppendResize records a new canvas size, activated at the given timestamp.
// Resizes only ever grow the canvas; the append is unconditional because
// the Resize Controller has already decided to trigger one.
func (r *Repository) AppendResize(ctx context.Context, width, height uint32, activatedAt int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO canvas_resizes (width, height, activated_at) VALUES ($1, $2, $3)`,
		width, height, activatedAt)
	if err != nil {
		return fmt.Errorf("append resize %dx%d: %w", width, height, err)
	}
	return nil
}

// EnsureInitialSize seeds the canvas_resizes table with a starting size if
// it is empty, so canvas_dimensions and resize_history always have at least
// one record to work with on a fresh database.
func (r *Repository) EnsureInitialSize(ctx context.Context, width, height uint32, activatedAt int64) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM canvas_resizes)`).Scan(&exists); err != nil {
		return fmt.Errorf("check initial resize presence: %w", err)
	}
	if exists {
		return nil
	}
	return r.AppendResize(ctx, width, height, activatedAt)
}
