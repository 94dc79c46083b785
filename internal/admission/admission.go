// Package admission implements user onboarding (spec §4.7): resolving a
// public key's homeserver via external discovery and admitting it into the
// state store so the polling scheduler starts tracking it.
package admission

import (
	"context"
	"errors"
	"fmt"

	"pixelcanva-indexer/internal/homeserver"
)

// ErrHomeserverNotFound is returned when discovery resolves nothing for a
// public key.
var ErrHomeserverNotFound = errors.New("homeserver not found for public key")

// ErrAlreadyAdmitted is returned when the public key is already tracked;
// callers treat this as a successful no-op, not a failure.
var ErrAlreadyAdmitted = errors.New("user already admitted")

// UserStore is the subset of the state store admission needs. Satisfied by
// *repository.Repository; kept as an interface so admission logic can be
// tested without a live database.
type UserStore interface {
	UserExists(ctx context.Context, publicKey string) (bool, error)
	AdmitUser(ctx context.Context, publicKey, homeserverID string, createdAt int64) error
}

// Service admits new users by resolving their homeserver and recording
// them in the state store.
type Service struct {
	store      UserStore
	discoverer homeserver.Discoverer
	now        func() int64
}

// NewService builds an admission Service. now supplies the current time in
// microseconds, matching the clock the rest of the indexer shares; it is
// converted to seconds for the user's created_at stamp (spec §3).
func NewService(store UserStore, discoverer homeserver.Discoverer, now func() int64) *Service {
	return &Service{store: store, discoverer: discoverer, now: now}
}

// Admit runs the §4.7 admission steps for publicKey. Returns
// ErrAlreadyAdmitted (not a failure) if the user is already tracked, or
// ErrHomeserverNotFound if discovery resolves nothing.
func (s *Service) Admit(ctx context.Context, publicKey string) error {
	exists, err := s.store.UserExists(ctx, publicKey)
	if err != nil {
		return fmt.Errorf("check existing user %s: %w", publicKey, err)
	}
	if exists {
		return ErrAlreadyAdmitted
	}

	resolved, err := s.discoverer.DiscoverHomeserver(ctx, publicKey)
	if err != nil {
		return fmt.Errorf("discover homeserver for %s: %w", publicKey, err)
	}
	if resolved == "" {
		return fmt.Errorf("%w: %s", ErrHomeserverNotFound, publicKey)
	}

	hostID := homeserver.NormalizeHostID(resolved)

	createdAtSeconds := s.now() / 1_000_000
	if err := s.store.AdmitUser(ctx, publicKey, hostID, createdAtSeconds); err != nil {
		return fmt.Errorf("admit user %s: %w", publicKey, err)
	}
	return nil
}
