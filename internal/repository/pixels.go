package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pixelcanva-indexer/internal/models"
)

// CommitPixel atomically records a validated placement: it inserts the
// immutable pixel_events row, then either creates the canvas cell (first
// paint) or updates it (overwrite). wasNewCell reports which branch ran;
// wasNewlyOverwritten reports whether this specific commit transitioned the
// cell from never-overwritten to overwritten.
//
// The whole operation runs inside one transaction at the database's default
// isolation level. An existing target cell is locked via SELECT ... FOR
// UPDATE, so concurrent commits to that coordinate apply one after another.
// When two commits race to create the same cell, the later insert fails on
// the primary key and that commit is rolled back and returns an error.
func (r *Repository) CommitPixel(ctx context.Context, id, userPK string, x, y uint32, color uint8, placedAt int64) (wasNewCell, wasNewlyOverwritten bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, false, fmt.Errorf("begin commit_pixel tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO pixel_events (id, user_pk, x, y, color, placed_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, userPK, x, y, color, placedAt); err != nil {
		return false, false, fmt.Errorf("insert pixel event %s: %w", id, err)
	}

	var existingFirstUserPK string
	var existingWasOverwritten bool
	err = tx.QueryRow(ctx,
		`SELECT first_user_pk, was_overwritten FROM canvas_cells WHERE x = $1 AND y = $2 FOR UPDATE`,
		x, y).Scan(&existingFirstUserPK, &existingWasOverwritten)

	switch {
	case err == pgx.ErrNoRows:
		if _, err := tx.Exec(ctx,
			`INSERT INTO canvas_cells (x, y, color, user_pk, first_user_pk, placed_at, was_overwritten)
			 VALUES ($1, $2, $3, $4, $4, $5, FALSE)`,
			x, y, color, userPK, placedAt); err != nil {
			return false, false, fmt.Errorf("insert canvas cell (%d,%d): %w", x, y, err)
		}
		wasNewCell = true
	case err != nil:
		return false, false, fmt.Errorf("lock canvas cell (%d,%d): %w", x, y, err)
	default:
		wasNewlyOverwritten = !existingWasOverwritten && existingFirstUserPK != userPK
		nowOverwritten := existingWasOverwritten || wasNewlyOverwritten
		if _, err := tx.Exec(ctx,
			`UPDATE canvas_cells SET color = $3, user_pk = $4, placed_at = $5, was_overwritten = $6
			 WHERE x = $1 AND y = $2`,
			x, y, color, userPK, placedAt, nowOverwritten); err != nil {
			return false, false, fmt.Errorf("update canvas cell (%d,%d): %w", x, y, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, false, fmt.Errorf("commit commit_pixel tx: %w", err)
	}
	return wasNewCell, wasNewlyOverwritten, nil
}

// FillStats reports the number of painted cells and, among those, the
// number that have been overwritten at least once — the inputs to the
// Resize Controller's trigger condition.
func (r *Repository) FillStats(ctx context.Context) (filled, overwritten int, err error) {
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE was_overwritten) FROM canvas_cells`).
		Scan(&filled, &overwritten)
	if err != nil {
		return 0, 0, fmt.Errorf("query fill stats: %w", err)
	}
	return filled, overwritten, nil
}

// CanvasSnapshot returns every painted cell, for resynchronizing consumers
// that missed fan-out bus events.
func (r *Repository) CanvasSnapshot(ctx context.Context) ([]models.CanvasCell, error) {
	rows, err := r.db.Query(ctx,
		`SELECT x, y, color, user_pk, first_user_pk, placed_at, was_overwritten FROM canvas_cells`)
	if err != nil {
		return nil, fmt.Errorf("query canvas snapshot: %w", err)
	}
	defer rows.Close()

	var cells []models.CanvasCell
	for rows.Next() {
		var c models.CanvasCell
		if err := rows.Scan(&c.X, &c.Y, &c.Color, &c.UserPK, &c.FirstUserPK, &c.PlacedAt, &c.WasOverwritten); err != nil {
			return nil, fmt.Errorf("scan canvas cell: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate canvas cells: %w", err)
	}
	return cells, nil
}

// PixelInfo returns the current cell state at (x, y) plus its ten most
// recent historical placements, descending by placed_at.
func (r *Repository) PixelInfo(ctx context.Context, x, y uint32) (models.PixelInfo, error) {
	var info models.PixelInfo
	err := r.db.QueryRow(ctx,
		`SELECT x, y, color, user_pk, first_user_pk, placed_at, was_overwritten
		 FROM canvas_cells WHERE x = $1 AND y = $2`, x, y).
		Scan(&info.Current.X, &info.Current.Y, &info.Current.Color, &info.Current.UserPK,
			&info.Current.FirstUserPK, &info.Current.PlacedAt, &info.Current.WasOverwritten)
	if err != nil {
		return models.PixelInfo{}, fmt.Errorf("query cell (%d,%d): %w", x, y, err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_pk, color, placed_at FROM pixel_events
		 WHERE x = $1 AND y = $2 ORDER BY placed_at DESC LIMIT 10`, x, y)
	if err != nil {
		return models.PixelInfo{}, fmt.Errorf("query history (%d,%d): %w", x, y, err)
	}
	defer rows.Close()

	for rows.Next() {
		var h models.PixelHistoryEntry
		if err := rows.Scan(&h.ID, &h.UserPK, &h.Color, &h.PlacedAt); err != nil {
			return models.PixelInfo{}, fmt.Errorf("scan history row (%d,%d): %w", x, y, err)
		}
		info.History = append(info.History, h)
	}
	if err := rows.Err(); err != nil {
		return models.PixelInfo{}, fmt.Errorf("iterate history rows (%d,%d): %w", x, y, err)
	}
	return info, nil
}
