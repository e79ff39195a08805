package remind

import (
	"context"
	"testing"
	"time"

	"github.com/brk3/arena/pkg/arena"
)

func TestExpiring(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	q := &mockQuerier{
		participants: []arena.Participant{
			{ArenaID: "a1", UserID: "u1", CurrentStreak: 3, Active: true,
				LastCompletedAt: now.Add(-23 * time.Hour)},
			{ArenaID: "a2", UserID: "u1", CurrentStreak: 5, Active: true,
				LastCompletedAt: now.Add(-2 * time.Hour)},
			{ArenaID: "a1", UserID: "u2", CurrentStreak: 0, Active: true,
				LastCompletedAt: now.Add(-23 * time.Hour)},
		},
		arenas: map[string]*arena.Arena{
			"a1": {ID: "a1", Title: "guitar"},
			"a2": {ID: "a2", Title: "coding"},
		},
		users: map[string]*arena.User{
			"u1": {ID: "u1", Email: "u1@example.com"},
			"u2": {ID: "u2", Email: "u2@example.com"},
		},
	}

	got, err := Expiring(context.Background(), q, 2*time.Hour, now)
	if err != nil {
		t.Fatal(err)
	}
	// only u1's guitar streak is within 2h of lapsing; a zero streak has
	// nothing to lose
	if len(got) != 1 {
		t.Fatalf("got %v, want one user", got)
	}
	arenas := got["u1@example.com"]
	if len(arenas) != 1 || arenas[0] != "guitar" {
		t.Fatalf("got %v, want [guitar]", arenas)
	}
}

func TestExpiring_SkipsUsersWithoutEmail(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	q := &mockQuerier{
		participants: []arena.Participant{
			{ArenaID: "a1", UserID: "u1", CurrentStreak: 3, Active: true,
				LastCompletedAt: now.Add(-23 * time.Hour)},
		},
		arenas: map[string]*arena.Arena{"a1": {ID: "a1", Title: "guitar"}},
		users:  map[string]*arena.User{"u1": {ID: "u1"}},
	}

	got, err := Expiring(context.Background(), q, 2*time.Hour, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestRun_NotifiesPerUser(t *testing.T) {
	now := time.Now()
	q := &mockQuerier{
		participants: []arena.Participant{
			{ArenaID: "a1", UserID: "u1", CurrentStreak: 3, Active: true,
				LastCompletedAt: now.Add(-23 * time.Hour)},
		},
		arenas: map[string]*arena.Arena{"a1": {ID: "a1", Title: "guitar"}},
		users:  map[string]*arena.User{"u1": {ID: "u1", Email: "u1@example.com"}},
	}
	n := &mockNotifier{}

	if err := Run(context.Background(), q, n, 2*time.Hour); err != nil {
		t.Fatal(err)
	}
	if !n.called {
		t.Fatal("notifier was not called")
	}
	if n.threshold != 2 {
		t.Fatalf("threshold=%d want 2", n.threshold)
	}
	if got := n.arenas["u1@example.com"]; len(got) != 1 || got[0] != "guitar" {
		t.Fatalf("got %v, want [guitar]", got)
	}
}
