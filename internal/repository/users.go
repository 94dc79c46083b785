package repository

import (
	"context"
	"fmt"
)

// AdmitUser inserts a new user bound to homeserverID. Idempotent: a second
// call for an already-admitted public key is a no-op.
func (r *Repository) AdmitUser(ctx context.Context, publicKey, homeserverID string, createdAt int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (public_key, homeserver, cursor, created_at)
		 VALUES ($1, $2, '', $3)
		 ON CONFLICT (public_key) DO NOTHING`,
		publicKey, homeserverID, createdAt)
	if err != nil {
		return fmt.Errorf("admit user %s: %w", publicKey, err)
	}
	return nil
}

// UserExists reports whether publicKey has already been admitted.
func (r *Repository) UserExists(ctx context.Context, publicKey string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE public_key = $1)`, publicKey).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user %s exists: %w", publicKey, err)
	}
	return exists, nil
}

// TrackedUser is one user tracked on a homeserver: its public key and the
// cursor the poller should resume from.
type TrackedUser struct {
	PublicKey string
	Cursor    string
}

// UsersGroupedByHomeserver returns every admitted user, grouped by the
// homeserver that hosts them, for the polling scheduler to fan out over.
func (r *Repository) UsersGroupedByHomeserver(ctx context.Context) (map[string][]TrackedUser, error) {
	rows, err := r.db.Query(ctx, `SELECT public_key, homeserver, cursor FROM users`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]TrackedUser)
	for rows.Next() {
		var pk, hs, cursor string
		if err := rows.Scan(&pk, &hs, &cursor); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		grouped[hs] = append(grouped[hs], TrackedUser{PublicKey: pk, Cursor: cursor})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return grouped, nil
}

// UpdateCursor advances publicKey's resume cursor. Callers are only ever
// expected to move it forward; the store does not enforce monotonicity
// itself since cursors are opaque homeserver-issued tokens.
func (r *Repository) UpdateCursor(ctx context.Context, publicKey, cursor string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET cursor = $2 WHERE public_key = $1`, publicKey, cursor)
	if err != nil {
		return fmt.Errorf("update cursor for %s: %w", publicKey, err)
	}
	return nil
}

// CountPlacementsInWindow counts publicKey's committed events with
// placed_at in (now-windowMicros, now].
func (r *Repository) CountPlacementsInWindow(ctx context.Context, publicKey string, now, windowMicros int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM pixel_events
		 WHERE user_pk = $1 AND placed_at > $2 AND placed_at <= $3`,
		publicKey, now-windowMicros, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count placements for %s: %w", publicKey, err)
	}
	return count, nil
}

// EventExists reports whether a pixel event with this ID has already been
// committed, used by the ingestion pipeline's dedupe step.
func (r *Repository) EventExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM pixel_events WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event %s exists: %w", id, err)
	}
	return exists, nil
}
