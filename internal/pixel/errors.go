package pixel

import "errors"

// Sentinel errors for the validation pipeline (spec §7). Callers use
// errors.Is to classify a failure without parsing message text.
var (
	// ErrDecodeError is returned when a pixel-event ID is not a valid
	// 13-character Crockford-Base32 string.
	ErrDecodeError = errors.New("invalid pixel event id")

	// ErrStaleOrFutureTimestamp is returned when a decoded timestamp falls
	// outside the accepted clock-skew / epoch-floor window.
	ErrStaleOrFutureTimestamp = errors.New("timestamp outside accepted window")

	// ErrInvalidColor is returned when a payload's color index is outside
	// the 16-entry palette.
	ErrInvalidColor = errors.New("invalid color index")

	// ErrOutOfBounds is returned when a payload's coordinate falls outside
	// the current canvas dimensions.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrCoordinateUncovered is returned when no resize record's dimensions
	// cover the payload's coordinate at all.
	ErrCoordinateUncovered = errors.New("no canvas size covers this coordinate")

	// ErrPreExpansionPlacement is returned when a payload's timestamp
	// predates the activation of the canvas size that covers it.
	ErrPreExpansionPlacement = errors.New("placement predates canvas expansion")
)
