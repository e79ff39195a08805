package storage

import (
	"context"
	"errors"
	"time"

	"github.com/brk3/arena/pkg/arena"
)

// QueryLimit caps the result count of any single list call. Callers must
// treat a full page as a pagination boundary, not the complete dataset.
const QueryLimit = 1000

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("version conflict")
)

type ArenaFilter struct {
	CreatedBy  string
	PublicOnly bool
	IDs        []string
}

type ParticipantFilter struct {
	ArenaID    string
	UserID     string
	ActiveOnly bool
}

type CompletionFilter struct {
	ArenaID string
	UserID  string
	Since   time.Time
	Limit   int // 0 means QueryLimit
}

type Store interface {
	PutArena(ctx context.Context, a *arena.Arena) error
	GetArena(ctx context.Context, id string) (*arena.Arena, error)
	ListArenas(ctx context.Context, f ArenaFilter) ([]arena.Arena, error)
	DeleteArena(ctx context.Context, id string) error

	PutParticipant(ctx context.Context, p *arena.Participant) error
	ListParticipants(ctx context.Context, f ParticipantFilter) ([]arena.Participant, error)

	// UpdateParticipant persists p only if the stored Version still equals
	// p.Version, then increments it. A stale version returns ErrConflict.
	UpdateParticipant(ctx context.Context, p *arena.Participant) error

	PutCompletion(ctx context.Context, c *arena.Completion) error

	// ListCompletions returns completions ordered by CompletedAt descending.
	// The bool reports whether the result was truncated at the limit.
	ListCompletions(ctx context.Context, f CompletionFilter) ([]arena.Completion, bool, error)

	PutUser(ctx context.Context, u *arena.User) error
	GetUser(ctx context.Context, id string) (*arena.User, error)
	ListUsers(ctx context.Context, ids []string) ([]arena.User, error)

	Close() error
}
