// Package models holds the plain data types shared across the indexer.
package models

// User represents a row in the 'users' table: a canvas participant keyed by
// public key, bound to the homeserver that hosts their pixel placements.
type User struct {
	PublicKey  string `json:"public_key"`
	Homeserver string `json:"homeserver_id"`
	Cursor     string `json:"cursor"`
	CreatedAt  int64  `json:"created_at"` // seconds since epoch
}

// PixelEvent represents an immutable row in the 'pixel_events' table: one
// validated, committed placement.
type PixelEvent struct {
	ID       string `json:"id"`
	UserPK   string `json:"user_pk"`
	X        uint32 `json:"x"`
	Y        uint32 `json:"y"`
	Color    uint8  `json:"color"`
	PlacedAt int64  `json:"placed_at"` // microseconds since epoch
}

// CanvasCell represents a row in the 'canvas_cells' table: the authoritative
// color at (X, Y) plus overwrite provenance.
type CanvasCell struct {
	X              uint32 `json:"x"`
	Y              uint32 `json:"y"`
	Color          uint8  `json:"color"`
	UserPK         string `json:"user_pk"`
	FirstUserPK    string `json:"first_user_pk"`
	PlacedAt       int64  `json:"placed_at"`
	WasOverwritten bool   `json:"was_overwritten"`
}

// ResizeRecord represents a row in the 'canvas_resizes' table: one step in
// the canvas's append-only growth history.
type ResizeRecord struct {
	Width       uint32 `json:"width"`
	Height      uint32 `json:"height"`
	ActivatedAt int64  `json:"activated_at"`
}

// PixelHistoryEntry is one historical placement at a coordinate, returned by
// PixelInfo alongside the current cell state.
type PixelHistoryEntry struct {
	ID       string `json:"id"`
	UserPK   string `json:"user_pk"`
	Color    uint8  `json:"color"`
	PlacedAt int64  `json:"placed_at"`
}

// PixelInfo bundles a cell's current state with its most recent history.
type PixelInfo struct {
	Current CanvasCell          `json:"current"`
	History []PixelHistoryEntry `json:"history"`
}

// PixelPlaced is broadcast on the fan-out bus after a successful commit.
type PixelPlaced struct {
	X        uint32 `json:"x"`
	Y        uint32 `json:"y"`
	Color    uint8  `json:"color"`
	UserPK   string `json:"user_pk"`
	PlacedAt int64  `json:"placed_at"`
}

// CanvasResized is broadcast on the fan-out bus after the Resize Controller
// appends a new resize record.
type CanvasResized struct {
	OldWidth  uint32 `json:"old_width"`
	OldHeight uint32 `json:"old_height"`
	NewWidth  uint32 `json:"new_width"`
	NewHeight uint32 `json:"new_height"`
}
