package repository

import (
	"context"
	"os"
	"testing"
)

// newTestRepository connects against TEST_DATABASE_URL when set, otherwise
// skips — these are integration tests against a real Postgres instance, not
// unit tests, matching how this codebase already treats anything that needs
// a live dependency.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration test")
	}

	ctx := context.Background()
	repo, err := NewRepository(ctx, dbURL)
	if err != nil {
		t.Skipf("cannot connect to test database: %v", err)
	}
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(repo.Close)
	return repo
}

func TestAdmitUserIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.AdmitUser(ctx, "pk1", "homeserver.example", 1000); err != nil {
		t.Fatalf("first admit: %v", err)
	}
	if err := repo.AdmitUser(ctx, "pk1", "homeserver.example", 1000); err != nil {
		t.Fatalf("second admit should be a no-op, got: %v", err)
	}

	exists, err := repo.UserExists(ctx, "pk1")
	if err != nil {
		t.Fatalf("user_exists: %v", err)
	}
	if !exists {
		t.Fatal("expected user to exist after admit")
	}
}

func TestCommitPixelFirstPaintThenOverwrite(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.AdmitUser(ctx, "alice", "hs.example", 0); err != nil {
		t.Fatalf("admit alice: %v", err)
	}
	if err := repo.AdmitUser(ctx, "bob", "hs.example", 0); err != nil {
		t.Fatalf("admit bob: %v", err)
	}

	wasNew, wasOverwritten, err := repo.CommitPixel(ctx, "evt1", "alice", 5, 5, 3, 1000)
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if !wasNew || wasOverwritten {
		t.Fatalf("expected new cell without overwrite, got new=%v overwritten=%v", wasNew, wasOverwritten)
	}

	wasNew, wasOverwritten, err = repo.CommitPixel(ctx, "evt2", "bob", 5, 5, 7, 2000)
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if wasNew || !wasOverwritten {
		t.Fatalf("expected overwrite by a different user, got new=%v overwritten=%v", wasNew, wasOverwritten)
	}

	// Further paints by any user keep was_overwritten monotonically true.
	_, wasOverwritten, err = repo.CommitPixel(ctx, "evt3", "alice", 5, 5, 2, 3000)
	if err != nil {
		t.Fatalf("third commit: %v", err)
	}
	if wasOverwritten {
		t.Fatal("expected no new overwrite transition on a cell that is already overwritten")
	}
	info, err := repo.PixelInfo(ctx, 5, 5)
	if err != nil {
		t.Fatalf("pixel info: %v", err)
	}
	if !info.Current.WasOverwritten {
		t.Fatal("expected was_overwritten to stay true even when original author repaints")
	}

	filled, overwritten, err := repo.FillStats(ctx)
	if err != nil {
		t.Fatalf("fill stats: %v", err)
	}
	if filled != 1 || overwritten != 1 {
		t.Fatalf("expected 1 filled, 1 overwritten, got filled=%d overwritten=%d", filled, overwritten)
	}
}

func TestCountPlacementsInWindow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.AdmitUser(ctx, "carol", "hs.example", 0); err != nil {
		t.Fatalf("admit carol: %v", err)
	}
	for i, ts := range []int64{1000, 2000, 3000} {
		if _, _, err := repo.CommitPixel(ctx, "window-evt"+string(rune('a'+i)), "carol", uint32(i), 0, 1, ts); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}

	count, err := repo.CountPlacementsInWindow(ctx, "carol", 3000, 2000)
	if err != nil {
		t.Fatalf("count placements: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 placements in window, got %d", count)
	}
}
