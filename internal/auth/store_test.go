package auth

import (
	"testing"

	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/shared"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewSQLiteStore(db)
}

func TestSQLiteStore(t *testing.T) {
	t.Run("Get On Empty Store", func(t *testing.T) {
		store := newTestStore(t)

		session, err := store.Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session != nil {
			t.Errorf("expected nil session, got %+v", session)
		}
	})

	t.Run("Put Then Get", func(t *testing.T) {
		store := newTestStore(t)

		want := &models.Session{
			Email:        "user@example.com",
			IDToken:      "id-token",
			RefreshToken: "refresh-token",
			ExpiresAt:    1756700000,
			DeviceID:     "device-1",
		}
		if err := store.Put(want); err != nil {
			t.Fatalf("failed to put session: %v", err)
		}

		got, err := store.Get()
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got == nil {
			t.Fatal("expected a session, got nil")
		}
		if *got != *want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("Put Replaces Previous Session", func(t *testing.T) {
		store := newTestStore(t)

		first := &models.Session{Email: "first@example.com", DeviceID: "device-1"}
		second := &models.Session{Email: "second@example.com", DeviceID: "device-1"}

		if err := store.Put(first); err != nil {
			t.Fatalf("failed to put first session: %v", err)
		}
		if err := store.Put(second); err != nil {
			t.Fatalf("failed to put second session: %v", err)
		}

		got, err := store.Get()
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if got.Email != "second@example.com" {
			t.Errorf("expected second session to win, got %q", got.Email)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		store := newTestStore(t)

		if err := store.Put(&models.Session{Email: "user@example.com"}); err != nil {
			t.Fatalf("failed to put session: %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}

		session, err := store.Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session != nil {
			t.Errorf("expected nil session after clear, got %+v", session)
		}
	})

	t.Run("Clear On Empty Store", func(t *testing.T) {
		store := newTestStore(t)

		if err := store.Clear(); err != nil {
			t.Errorf("clearing an empty store should not fail: %v", err)
		}
	})

	t.Run("Device UUID Is Stable", func(t *testing.T) {
		store := newTestStore(t)

		first, err := store.DeviceUUID()
		if err != nil {
			t.Fatalf("failed to get device uuid: %v", err)
		}
		if first == "" {
			t.Fatal("expected a generated device uuid")
		}

		second, err := store.DeviceUUID()
		if err != nil {
			t.Fatalf("failed to get device uuid: %v", err)
		}
		if first != second {
			t.Errorf("device uuid changed between calls: %q then %q", first, second)
		}
	})
}
