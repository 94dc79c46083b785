package ingester

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pixelcanva-indexer/internal/ratelimit"
	"pixelcanva-indexer/internal/repository"
	"pixelcanva-indexer/internal/resize"
	"pixelcanva-indexer/internal/sse"
)

// UserStore is the subset of the state store the scheduler itself needs,
// distinct from what the Pipeline needs per-event.
type UserStore interface {
	UsersGroupedByHomeserver(ctx context.Context) (map[string][]repository.TrackedUser, error)
	UpdateCursor(ctx context.Context, publicKey, cursor string) error
}

// EventsFetcher polls a homeserver's events-stream endpoint.
type EventsFetcher interface {
	FetchEvents(ctx context.Context, homeserverHost string, users []repository.TrackedUser) (string, error)
}

// Scheduler drives the fixed-interval poll loop (spec §4.5): one tick per
// period, fanning out to every tracked homeserver, running the ingestion
// pipeline over every qualifying event, then invoking the Resize
// Controller.
type Scheduler struct {
	users    UserStore
	events   EventsFetcher
	pipeline *Pipeline
	resize   *resize.Controller
	throttle *ratelimit.Throttle
	interval time.Duration
	now      func() int64
}

// NewScheduler builds a Scheduler that ticks every interval.
func NewScheduler(users UserStore, events EventsFetcher, pipeline *Pipeline, resizeCtl *resize.Controller, throttle *ratelimit.Throttle, interval time.Duration, now func() int64) *Scheduler {
	return &Scheduler{
		users: users, events: events, pipeline: pipeline, resize: resizeCtl,
		throttle: throttle, interval: interval, now: now,
	}
}

// Run ticks at the configured interval until ctx is cancelled. Ticks never
// overlap: if a tick's work exceeds the interval, the next tick fires
// immediately after the previous one finishes, not on the missed boundary.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.tick(ctx); err != nil {
				log.Printf("ingester: poll cycle error: %v", err)
			}
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) error {
	groups, err := s.users.UsersGroupedByHomeserver(ctx)
	if err != nil {
		return fmt.Errorf("list users grouped by homeserver: %w", err)
	}

	for host, users := range groups {
		if err := s.pollHomeserver(ctx, host, users); err != nil {
			log.Printf("ingester: error polling homeserver %s: %v", host, err)
		}
	}

	if err := s.resize.Check(ctx); err != nil {
		return fmt.Errorf("resize check: %w", err)
	}
	return nil
}

func (s *Scheduler) pollHomeserver(ctx context.Context, host string, users []repository.TrackedUser) error {
	if err := s.throttle.Wait(ctx, host); err != nil {
		return fmt.Errorf("throttle wait for %s: %w", host, err)
	}

	body, err := s.events.FetchEvents(ctx, host, users)
	if err != nil {
		return fmt.Errorf("fetch events from %s: %w", host, err)
	}

	tracked := make(map[string]bool, len(users))
	for _, u := range users {
		tracked[u.PublicKey] = true
	}

	for _, evt := range sse.Parse(body) {
		if evt.EventType != "PUT" {
			continue
		}
		userPK, pixelID, ok := sse.ParsePixelURI(evt.URI)
		if !ok || !tracked[userPK] {
			continue
		}

		blobURL := fmt.Sprintf("https://%s/%s/pub/pubky-canva/pixels/%s", host, userPK, pixelID)
		procErr := s.pipeline.ProcessEvent(ctx, pixelID, userPK, blobURL, s.now())

		if procErr != nil {
			if errors.Is(procErr, ErrInfrastructureFailure) {
				log.Printf("ingester: infrastructure failure processing %s from %s, cursor not advanced: %v", pixelID, userPK, procErr)
				continue
			}
			log.Printf("ingester: skipping %s from %s: %v", pixelID, userPK, procErr)
		}

		if evt.Cursor != "" {
			if err := s.users.UpdateCursor(ctx, userPK, evt.Cursor); err != nil {
				log.Printf("ingester: failed to advance cursor for %s: %v", userPK, err)
			}
		}
	}

	return nil
}
