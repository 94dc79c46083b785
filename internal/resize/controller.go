// Package resize implements the Resize Controller (spec §4.6): the
// deterministic canvas growth rule triggered once per poll cycle.
package resize

import (
	"context"
	"fmt"

	"pixelcanva-indexer/internal/eventbus"
	"pixelcanva-indexer/internal/models"
)

// Store is the subset of the state store the Resize Controller needs.
type Store interface {
	CanvasDimensions(ctx context.Context) (width, height uint32, err error)
	FillStats(ctx context.Context) (filled, overwritten int, err error)
	AppendResize(ctx context.Context, width, height uint32, activatedAt int64) error
}

// Controller checks the fill/overwrite thresholds once per poll cycle and
// grows the canvas when they are met.
type Controller struct {
	store Store
	bus   *eventbus.Bus
	now   func() int64
}

// NewController builds a Controller. now supplies the current time in
// microseconds, used to stamp a triggered resize's activated_at.
func NewController(store Store, bus *eventbus.Bus, now func() int64) *Controller {
	return &Controller{store: store, bus: bus, now: now}
}

// Check runs the §4.6 trigger condition: resize iff filled >= W*H and
// overwritten >= (W*H)/2. At most one resize is appended per call. The
// growth rule alternates doubling width and height: if W == H, grow to
// (2W, H); otherwise grow to (W, 2H).
func (c *Controller) Check(ctx context.Context) error {
	width, height, err := c.store.CanvasDimensions(ctx)
	if err != nil {
		return fmt.Errorf("read canvas dimensions: %w", err)
	}

	filled, overwritten, err := c.store.FillStats(ctx)
	if err != nil {
		return fmt.Errorf("read fill stats: %w", err)
	}

	total := int(width) * int(height)
	half := total / 2
	if filled < total || overwritten < half {
		return nil
	}

	newWidth, newHeight := width, height
	if width == height {
		newWidth = width * 2
	} else {
		newHeight = height * 2
	}

	activatedAt := c.now()
	if err := c.store.AppendResize(ctx, newWidth, newHeight, activatedAt); err != nil {
		return fmt.Errorf("append resize %dx%d: %w", newWidth, newHeight, err)
	}

	c.bus.Publish(eventbus.Event{
		Type: eventbus.EventCanvasResized,
		Data: models.CanvasResized{
			OldWidth: width, OldHeight: height,
			NewWidth: newWidth, NewHeight: newHeight,
		},
	})
	return nil
}
