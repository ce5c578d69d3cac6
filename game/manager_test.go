package game

import (
	"errors"
	"testing"
	"time"
)

func testManager() *Manager {
	return NewManager(ManagerConfig{
		MaxPendingGames: 3,
		MinStake:        3,
		MaxStake:        100,
	})
}

func TestManager_CreateDefaults(t *testing.T) {
	m := testManager()
	defer m.Close()

	g, err := m.Create(User{ID: 1, Name: "alice"}, Options{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.Variant != 9 {
		t.Errorf("Expected default variant 9, got %d", g.Variant)
	}
	if g.Type != TypeStandalone {
		t.Errorf("Expected default type %s, got %s", TypeStandalone, g.Type)
	}
	if g.Status() != StatusWaiting {
		t.Errorf("Expected status %s, got %s", StatusWaiting, g.Status())
	}

	retrieved, ok := m.Get(g.ID)
	if !ok || retrieved != g {
		t.Error("Get should return the created game")
	}
}

func TestManager_CreateValidation(t *testing.T) {
	m := testManager()
	defer m.Close()

	u := User{ID: 1, Name: "alice"}

	if _, err := m.Create(u, Options{Variant: 5}); !errors.Is(err, ErrInvalidVariant) {
		t.Errorf("Expected ErrInvalidVariant, got %v", err)
	}
	if _, err := m.Create(u, Options{Type: "tournament"}); !errors.Is(err, ErrInvalidType) {
		t.Errorf("Expected ErrInvalidType, got %v", err)
	}
	if _, err := m.Create(u, Options{Type: TypeMatch, Stake: 2}); !errors.Is(err, ErrInvalidStake) {
		t.Errorf("Expected ErrInvalidStake below the minimum, got %v", err)
	}
	if _, err := m.Create(u, Options{Type: TypeMatch, Stake: 101}); !errors.Is(err, ErrInvalidStake) {
		t.Errorf("Expected ErrInvalidStake above the maximum, got %v", err)
	}
	if _, err := m.Create(u, Options{Type: TypeMatch, Stake: 3}); err != nil {
		t.Errorf("Minimum stake should be accepted, got %v", err)
	}

	// Standalone games carry no stake even if one is sent.
	g, err := m.Create(u, Options{Type: TypeStandalone, Stake: 50})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.Stake != 0 {
		t.Errorf("Standalone stake should be zeroed, got %d", g.Stake)
	}
}

func TestManager_PendingQuota(t *testing.T) {
	m := testManager()
	defer m.Close()

	u := User{ID: 1, Name: "alice"}
	for i := 0; i < 3; i++ {
		if _, err := m.Create(u, Options{}); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	if _, err := m.Create(u, Options{}); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Expected ErrQuotaExceeded on the fourth game, got %v", err)
	}

	// Another user is not affected.
	if _, err := m.Create(User{ID: 2, Name: "bob"}, Options{}); err != nil {
		t.Errorf("Other users should not share the quota, got %v", err)
	}

	// A game leaving the waiting state frees a quota slot.
	pending := m.PendingFor(1)
	if len(pending) != 3 {
		t.Fatalf("Expected 3 pending games, got %d", len(pending))
	}
	g := pending[0]
	if _, err := m.Join(g.ID, User{ID: 2, Name: "bob"}); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	g.Deal()

	if _, err := m.Create(u, Options{}); err != nil {
		t.Errorf("Quota should free up once a game starts, got %v", err)
	}
}

func TestManager_Join(t *testing.T) {
	m := testManager()
	defer m.Close()

	g, _ := m.Create(User{ID: 1, Name: "alice"}, Options{})

	if _, err := m.Join(999, User{ID: 2}); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Expected ErrGameNotFound, got %v", err)
	}
	if _, err := m.Join(g.ID, User{ID: 1, Name: "alice"}); !errors.Is(err, ErrCannotJoinOwnGame) {
		t.Errorf("Expected ErrCannotJoinOwnGame, got %v", err)
	}
	if _, err := m.Join(g.ID, User{ID: 2, Name: "bob"}); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if _, err := m.Join(g.ID, User{ID: 3, Name: "carol"}); !errors.Is(err, ErrGameFull) {
		t.Errorf("Expected ErrGameFull, got %v", err)
	}
}

func TestManager_Cancel(t *testing.T) {
	m := testManager()
	defer m.Close()

	g, _ := m.Create(User{ID: 1, Name: "alice"}, Options{})

	if err := m.Cancel(g.ID, 2); !errors.Is(err, ErrNotCreator) {
		t.Errorf("Expected ErrNotCreator, got %v", err)
	}
	if err := m.Cancel(999, 1); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("Expected ErrGameNotFound, got %v", err)
	}
	if err := m.Cancel(g.ID, 1); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, ok := m.Get(g.ID); ok {
		t.Error("Cancelled game should be removed")
	}

	// A started game cannot be cancelled.
	g2, _ := m.Create(User{ID: 1, Name: "alice"}, Options{})
	m.Join(g2.ID, User{ID: 2, Name: "bob"})
	g2.Deal()
	if err := m.Cancel(g2.ID, 1); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("Expected ErrAlreadyStarted, got %v", err)
	}
}

func TestManager_ListWaitingAndCounts(t *testing.T) {
	m := testManager()
	defer m.Close()

	g1, _ := m.Create(User{ID: 1, Name: "alice"}, Options{})
	m.Create(User{ID: 2, Name: "bob"}, Options{})

	if got := len(m.ListWaiting()); got != 2 {
		t.Errorf("Expected 2 waiting games, got %d", got)
	}

	m.Join(g1.ID, User{ID: 2, Name: "bob"})
	g1.Deal()

	if got := len(m.ListWaiting()); got != 1 {
		t.Errorf("Expected 1 waiting game after one starts, got %d", got)
	}
	active, waiting := m.Counts()
	if active != 1 || waiting != 1 {
		t.Errorf("Expected counts 1/1, got %d/%d", active, waiting)
	}
}

func TestManager_Reap(t *testing.T) {
	m := NewManager(ManagerConfig{MaxPendingGames: 3, MinStake: 3, MaxStake: 100, WaitingTTL: time.Hour})
	defer m.Close()

	stale, _ := m.Create(User{ID: 1, Name: "alice"}, Options{})
	stale.createdAt = time.Now().Add(-2 * time.Hour)

	started, _ := m.Create(User{ID: 1, Name: "alice"}, Options{})
	started.createdAt = time.Now().Add(-2 * time.Hour)
	m.Join(started.ID, User{ID: 2, Name: "bob"})
	started.Deal()

	fresh, _ := m.Create(User{ID: 1, Name: "alice"}, Options{})

	m.reap()

	if _, ok := m.Get(stale.ID); ok {
		t.Error("Stale waiting game should be reaped")
	}
	if _, ok := m.Get(started.ID); !ok {
		t.Error("Started games must never be reaped")
	}
	if _, ok := m.Get(fresh.ID); !ok {
		t.Error("Fresh waiting game should survive")
	}
}
