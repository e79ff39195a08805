package server

import (
	"context"
	"sort"
	"sync"

	"github.com/brk3/arena/internal/storage"
	"github.com/brk3/arena/pkg/arena"
)

type memStore struct {
	mu           sync.RWMutex
	arenas       map[string]arena.Arena
	participants map[string]arena.Participant
	completions  []arena.Completion
	users        map[string]arena.User

	// test knobs
	completionLimit int // overrides the query cap when set
	conflicts       int // fail this many participant updates with ErrConflict
}

func newMemStore() *memStore {
	return &memStore{
		arenas:       map[string]arena.Arena{},
		participants: map[string]arena.Participant{},
		users:        map[string]arena.User{},
	}
}

func (m *memStore) PutArena(_ context.Context, a *arena.Arena) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.arenas[a.ID] = *a
	return nil
}

func (m *memStore) GetArena(_ context.Context, id string) (*arena.Arena, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.arenas[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) ListArenas(_ context.Context, f storage.ArenaFilter) ([]arena.Arena, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := map[string]bool{}
	for _, id := range f.IDs {
		wanted[id] = true
	}

	out := []arena.Arena{}
	for _, a := range m.arenas {
		if f.CreatedBy != "" && a.CreatedBy != f.CreatedBy {
			continue
		}
		if f.PublicOnly && !a.Public {
			continue
		}
		if len(f.IDs) > 0 && !wanted[a.ID] {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) DeleteArena(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.arenas[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.arenas, id)
	return nil
}

func (m *memStore) PutParticipant(_ context.Context, p *arena.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.participants[p.ID] = *p
	return nil
}

func (m *memStore) ListParticipants(_ context.Context, f storage.ParticipantFilter) ([]arena.Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []arena.Participant{}
	for _, p := range m.participants {
		if f.ArenaID != "" && p.ArenaID != f.ArenaID {
			continue
		}
		if f.UserID != "" && p.UserID != f.UserID {
			continue
		}
		if f.ActiveOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateParticipant(_ context.Context, p *arena.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conflicts > 0 {
		m.conflicts--
		return storage.ErrConflict
	}

	cur, ok := m.participants[p.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if cur.Version != p.Version {
		return storage.ErrConflict
	}
	p.Version++
	m.participants[p.ID] = *p
	return nil
}

func (m *memStore) PutCompletion(_ context.Context, c *arena.Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.completions = append(m.completions, *c)
	return nil
}

func (m *memStore) ListCompletions(_ context.Context, f storage.CompletionFilter) ([]arena.Completion, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := f.Limit
	if limit <= 0 || limit > storage.QueryLimit {
		limit = storage.QueryLimit
	}
	if m.completionLimit > 0 {
		limit = m.completionLimit
	}

	out := []arena.Completion{}
	for _, c := range m.completions {
		if f.ArenaID != "" && c.ArenaID != f.ArenaID {
			continue
		}
		if f.UserID != "" && c.UserID != f.UserID {
			continue
		}
		if !f.Since.IsZero() && c.CompletedAt.Before(f.Since) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })

	if len(out) > limit {
		return out[:limit], true, nil
	}
	return out, false, nil
}

func (m *memStore) PutUser(_ context.Context, u *arena.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[u.ID] = *u
	return nil
}

func (m *memStore) GetUser(_ context.Context, id string) (*arena.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) ListUsers(_ context.Context, ids []string) ([]arena.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []arena.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memStore) Close() error {
	return nil
}

var _ storage.Store = (*memStore)(nil)
