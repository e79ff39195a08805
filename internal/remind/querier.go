package remind

import (
	"context"

	"github.com/brk3/arena/internal/storage"
	"github.com/brk3/arena/pkg/arena"
)

// Querier is the slice of the store reminders need. storage.Store
// satisfies it.
type Querier interface {
	ListParticipants(ctx context.Context, f storage.ParticipantFilter) ([]arena.Participant, error)
	GetArena(ctx context.Context, id string) (*arena.Arena, error)
	GetUser(ctx context.Context, id string) (*arena.User, error)
}
