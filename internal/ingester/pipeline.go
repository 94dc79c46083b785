// Package ingester implements the ingestion pipeline (spec §4.4) and the
// polling scheduler that drives it (spec §4.5).
package ingester

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pixelcanva-indexer/internal/eventbus"
	"pixelcanva-indexer/internal/models"
	"pixelcanva-indexer/internal/pixel"
)

// ErrInfrastructureFailure wraps any state-store failure while processing an
// event: the dedupe lookup, the canvas dimensions or resize history read,
// the credit count, or the commit. Unlike every other pipeline failure, it
// must NOT advance the caller's cursor: the event is retried on the next tick.
var ErrInfrastructureFailure = errors.New("state store infrastructure failure")

// Store is the subset of the state store the ingestion pipeline needs.
type Store interface {
	EventExists(ctx context.Context, id string) (bool, error)
	CountPlacementsInWindow(ctx context.Context, publicKey string, now, windowMicros int64) (int, error)
	CommitPixel(ctx context.Context, id, userPK string, x, y uint32, color uint8, placedAt int64) (wasNewCell, wasNewlyOverwritten bool, err error)
	CanvasDimensions(ctx context.Context) (width, height uint32, err error)
	ResizeHistory(ctx context.Context) ([]models.ResizeRecord, error)
}

// BlobFetcher fetches the pixel payload a pubky:// URI points at.
type BlobFetcher interface {
	FetchBlob(ctx context.Context, uri string) ([]byte, error)
}

// Pipeline runs the per-event validation and commit steps.
type Pipeline struct {
	store             Store
	blobs             BlobFetcher
	bus               *eventbus.Bus
	maxCredits        int
	regenWindowMicros int64
}

// NewPipeline builds a Pipeline. maxCredits and regenWindowMicros configure
// the credit-rate economy applied at step 6.
func NewPipeline(store Store, blobs BlobFetcher, bus *eventbus.Bus, maxCredits int, regenWindowMicros int64) *Pipeline {
	return &Pipeline{store: store, blobs: blobs, bus: bus, maxCredits: maxCredits, regenWindowMicros: regenWindowMicros}
}

// ProcessEvent runs spec §4.4 steps 1-7 for one qualifying PUT event: dedupe,
// timestamp decode/validate, blob fetch, payload decode/validate, credit
// check, and commit. blobURL is the HTTP(S) address the BlobFetcher should
// actually GET; callers build it from the event's pubky:// URI.
//
// A nil return means the event was handled — committed, or deliberately
// skipped for a reason other than store infrastructure. Callers should
// advance the cursor in both cases. Only an error satisfying
// errors.Is(err, ErrInfrastructureFailure) means the cursor must NOT
// advance.
func (p *Pipeline) ProcessEvent(ctx context.Context, id, userPK, blobURL string, now int64) error {
	exists, err := p.store.EventExists(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: event_exists %s: %v", ErrInfrastructureFailure, id, err)
	}
	if exists {
		return nil
	}

	timestamp, err := pixel.DecodeTimestampID(id)
	if err != nil {
		return fmt.Errorf("decode timestamp for %s: %w", id, err)
	}
	if err := pixel.ValidateTimestamp(timestamp, now); err != nil {
		return fmt.Errorf("validate timestamp for %s: %w", id, err)
	}

	body, err := p.blobs.FetchBlob(ctx, blobURL)
	if err != nil {
		return fmt.Errorf("fetch blob for %s: %w", id, err)
	}

	var payload pixel.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode payload for %s: %w", id, err)
	}

	width, height, err := p.store.CanvasDimensions(ctx)
	if err != nil {
		return fmt.Errorf("%w: canvas_dimensions for %s: %v", ErrInfrastructureFailure, id, err)
	}
	history, err := p.store.ResizeHistory(ctx)
	if err != nil {
		return fmt.Errorf("%w: resize_history for %s: %v", ErrInfrastructureFailure, id, err)
	}
	resizeHistory := make([]pixel.ResizeRecord, len(history))
	for i, r := range history {
		resizeHistory[i] = pixel.ResizeRecord{Width: r.Width, Height: r.Height, ActivatedAt: r.ActivatedAt}
	}
	if err := pixel.ValidatePayload(payload, width, height, resizeHistory, timestamp); err != nil {
		return fmt.Errorf("validate payload for %s: %w", id, err)
	}

	recent, err := p.store.CountPlacementsInWindow(ctx, userPK, timestamp, p.regenWindowMicros)
	if err != nil {
		return fmt.Errorf("%w: count_placements_in_window for %s: %v", ErrInfrastructureFailure, id, err)
	}
	if recent >= p.maxCredits {
		return fmt.Errorf("no credits remaining for %s at placement %s", userPK, id)
	}

	_, _, err = p.store.CommitPixel(ctx, id, userPK, payload.X, payload.Y, payload.Color, timestamp)
	if err != nil {
		return fmt.Errorf("%w: commit_pixel %s: %v", ErrInfrastructureFailure, id, err)
	}

	p.bus.Publish(eventbus.Event{
		Type: eventbus.EventPixelPlaced,
		Data: models.PixelPlaced{X: payload.X, Y: payload.Y, Color: payload.Color, UserPK: userPK, PlacedAt: timestamp},
	})
	return nil
}
