package pixel

import "fmt"

// EpochFloorMicros is the earliest accepted placement timestamp: 2024-10-01
// 00:00 UTC in microseconds since the Unix epoch.
const EpochFloorMicros int64 = 1_727_740_800_000_000

// ClockSkewMicros is the allowed future-clock tolerance: 120 seconds.
const ClockSkewMicros int64 = 120 * 1_000_000

// Payload is the decoded pixel placement body fetched from a homeserver
// blob: {x, y, color}.
type Payload struct {
	X     uint32
	Y     uint32
	Color uint8
}

// ValidateTimestamp rejects timestamps that are too far in the future
// relative to nowMicros, or predate EpochFloorMicros.
func ValidateTimestamp(timestamp, nowMicros int64) error {
	if timestamp > nowMicros+ClockSkewMicros {
		return fmt.Errorf("%w: %d is more than %ds ahead of now (%d)",
			ErrStaleOrFutureTimestamp, timestamp, ClockSkewMicros/1_000_000, nowMicros)
	}
	if timestamp < EpochFloorMicros {
		return fmt.Errorf("%w: %d predates epoch floor %d",
			ErrStaleOrFutureTimestamp, timestamp, EpochFloorMicros)
	}
	return nil
}

// ResizeRecord is the minimal shape ValidatePayload needs from the resize
// history: width/height and activation time, ascending by ActivatedAt.
type ResizeRecord struct {
	Width       uint32
	Height      uint32
	ActivatedAt int64
}

// ValidatePayload runs the full §4.1 payload validation: color range,
// bounds against the current canvas dimensions, and the anti-backdating
// walk over resize history. resizeHistory must be ordered ascending by
// ActivatedAt.
func ValidatePayload(p Payload, width, height uint32, resizeHistory []ResizeRecord, timestamp int64) error {
	if p.Color > 15 {
		return fmt.Errorf("%w: %d (must be 0-15)", ErrInvalidColor, p.Color)
	}
	if p.X >= width || p.Y >= height {
		return fmt.Errorf("%w: (%d,%d) for canvas %dx%d", ErrOutOfBounds, p.X, p.Y, width, height)
	}

	required := p.X
	if p.Y > required {
		required = p.Y
	}
	required++

	for _, r := range resizeHistory {
		maxDim := r.Width
		if r.Height > maxDim {
			maxDim = r.Height
		}
		if maxDim >= required {
			if timestamp < r.ActivatedAt {
				return fmt.Errorf("%w: (%d,%d) placed at %d before canvas expanded at %d",
					ErrPreExpansionPlacement, p.X, p.Y, timestamp, r.ActivatedAt)
			}
			return nil
		}
	}

	return fmt.Errorf("%w: (%d,%d)", ErrCoordinateUncovered, p.X, p.Y)
}
