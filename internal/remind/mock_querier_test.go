package remind

import (
	"context"

	"github.com/brk3/arena/internal/storage"
	"github.com/brk3/arena/pkg/arena"
)

type mockQuerier struct {
	participants []arena.Participant
	arenas       map[string]*arena.Arena
	users        map[string]*arena.User
	err          error
}

func (m *mockQuerier) ListParticipants(_ context.Context, f storage.ParticipantFilter) ([]arena.Participant, error) {
	return m.participants, m.err
}

func (m *mockQuerier) GetArena(_ context.Context, id string) (*arena.Arena, error) {
	a, ok := m.arenas[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return a, nil
}

func (m *mockQuerier) GetUser(_ context.Context, id string) (*arena.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}
