package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/brk3/arena/internal/storage"
	"github.com/brk3/arena/pkg/arena"
	"go.etcd.io/bbolt"
)

const (
	arenasBucket       = "arenas"
	participantsBucket = "participants"
	completionsBucket  = "completions"
	usersBucket        = "users"
)

// Store is a single-node document store backed by bbolt. Completions are
// keyed arena_id/RFC3339Nano/id so an arena's history is one prefix scan.
type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, b := range []string{arenasBucket, participantsBucket, completionsBucket, usersBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) PutArena(_ context.Context, a *arena.Arena) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		val, err := json.Marshal(a)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(arenasBucket)).Put([]byte(a.ID), val)
	})
}

func (s *Store) GetArena(_ context.Context, id string) (*arena.Arena, error) {
	var out *arena.Arena
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(arenasBucket)).Get([]byte(id))
		if v == nil {
			return storage.ErrNotFound
		}
		out = &arena.Arena{}
		return json.Unmarshal(v, out)
	})
	return out, err
}

func (s *Store) ListArenas(_ context.Context, f storage.ArenaFilter) ([]arena.Arena, error) {
	var ids map[string]struct{}
	if f.IDs != nil {
		ids = make(map[string]struct{}, len(f.IDs))
		for _, id := range f.IDs {
			ids[id] = struct{}{}
		}
	}

	var out []arena.Arena
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(arenasBucket)).ForEach(func(_, v []byte) error {
			var a arena.Arena
			if err := json.Unmarshal(v, &a); err != nil {
				return err
			}
			if f.CreatedBy != "" && a.CreatedBy != f.CreatedBy {
				return nil
			}
			if f.PublicOnly && !a.Public {
				return nil
			}
			if ids != nil {
				if _, ok := ids[a.ID]; !ok {
					return nil
				}
			}
			out = append(out, a)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteArena(_ context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(arenasBucket))
		if b.Get([]byte(id)) == nil {
			return storage.ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

// participantDoc is the stored encoding of a participant. The API-facing
// struct hides Version from JSON, so the bolt encoding has to carry it
// explicitly or the compare-and-swap would never see a stored version.
type participantDoc struct {
	arena.Participant
	Version int64 `json:"version"`
}

func encodeParticipant(p *arena.Participant) ([]byte, error) {
	return json.Marshal(participantDoc{Participant: *p, Version: p.Version})
}

func decodeParticipant(v []byte) (arena.Participant, error) {
	var doc participantDoc
	if err := json.Unmarshal(v, &doc); err != nil {
		return arena.Participant{}, err
	}
	doc.Participant.Version = doc.Version
	return doc.Participant, nil
}

func (s *Store) PutParticipant(_ context.Context, p *arena.Participant) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		val, err := encodeParticipant(p)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(participantsBucket)).Put([]byte(p.ID), val)
	})
}

func (s *Store) ListParticipants(_ context.Context, f storage.ParticipantFilter) ([]arena.Participant, error) {
	var out []arena.Participant
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(participantsBucket)).ForEach(func(_, v []byte) error {
			p, err := decodeParticipant(v)
			if err != nil {
				return err
			}
			if f.ArenaID != "" && p.ArenaID != f.ArenaID {
				return nil
			}
			if f.UserID != "" && p.UserID != f.UserID {
				return nil
			}
			if f.ActiveOnly && !p.Active {
				return nil
			}
			out = append(out, p)
			return nil
		})
	})
	return out, err
}

func (s *Store) UpdateParticipant(_ context.Context, p *arena.Participant) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(participantsBucket))
		v := b.Get([]byte(p.ID))
		if v == nil {
			return storage.ErrNotFound
		}
		cur, err := decodeParticipant(v)
		if err != nil {
			return err
		}
		if cur.Version != p.Version {
			return storage.ErrConflict
		}
		p.Version++
		val, err := encodeParticipant(p)
		if err != nil {
			return err
		}
		return b.Put([]byte(p.ID), val)
	})
}

func completionKey(c *arena.Completion) []byte {
	return fmt.Appendf(nil, "%s/%s/%s", c.ArenaID, c.CompletedAt.UTC().Format(time.RFC3339Nano), c.ID)
}

func (s *Store) PutCompletion(_ context.Context, c *arena.Completion) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		val, err := json.Marshal(c)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(completionsBucket)).Put(completionKey(c), val)
	})
}

func (s *Store) ListCompletions(_ context.Context, f storage.CompletionFilter) ([]arena.Completion, bool, error) {
	limit := f.Limit
	if limit <= 0 || limit > storage.QueryLimit {
		limit = storage.QueryLimit
	}

	var matched []arena.Completion
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(completionsBucket))
		appendMatch := func(v []byte) error {
			var c arena.Completion
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			if f.UserID != "" && c.UserID != f.UserID {
				return nil
			}
			if !f.Since.IsZero() && c.CompletedAt.Before(f.Since) {
				return nil
			}
			matched = append(matched, c)
			return nil
		}

		if f.ArenaID != "" {
			c := b.Cursor()
			prefix := []byte(f.ArenaID + "/")
			for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
				if err := appendMatch(v); err != nil {
					return err
				}
			}
			return nil
		}
		return b.ForEach(func(_, v []byte) error { return appendMatch(v) })
	})
	if err != nil {
		return nil, false, err
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CompletedAt.After(matched[j].CompletedAt)
	})
	truncated := len(matched) > limit
	if truncated {
		matched = matched[:limit]
	}
	return matched, truncated, nil
}

func (s *Store) PutUser(_ context.Context, u *arena.User) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		val, err := json.Marshal(u)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(usersBucket)).Put([]byte(u.ID), val)
	})
}

func (s *Store) GetUser(_ context.Context, id string) (*arena.User, error) {
	var out *arena.User
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(usersBucket)).Get([]byte(id))
		if v == nil {
			return storage.ErrNotFound
		}
		out = &arena.User{}
		return json.Unmarshal(v, out)
	})
	return out, err
}

func (s *Store) ListUsers(_ context.Context, ids []string) ([]arena.User, error) {
	var out []arena.User
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(usersBucket))
		for _, id := range ids {
			v := b.Get([]byte(id))
			if v == nil {
				continue
			}
			var u arena.User
			if err := json.Unmarshal(v, &u); err != nil {
				return err
			}
			out = append(out, u)
		}
		return nil
	})
	return out, err
}

var _ storage.Store = (*Store)(nil)
