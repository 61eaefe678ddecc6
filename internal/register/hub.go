package register

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SnapshotStore persists register snapshots in Redis so an open ticket
// survives a process restart. A nil client degrades to memory-only registers.
type SnapshotStore struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func (s *SnapshotStore) key(registerID string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "register:snapshot:"
	}
	return prefix + registerID
}

// Load fetches a snapshot, returning nil data when none exists.
func (s *SnapshotStore) Load(ctx context.Context, registerID string) ([]byte, error) {
	if s == nil || s.Client == nil {
		return nil, nil
	}
	data, err := s.Client.Get(ctx, s.key(registerID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// Save stores a snapshot with the configured TTL.
func (s *SnapshotStore) Save(ctx context.Context, registerID string, data []byte) error {
	if s == nil || s.Client == nil {
		return nil
	}
	return s.Client.Set(ctx, s.key(registerID), data, s.TTL).Err()
}

// Hub maps register identifiers to engine instances. The engine itself is a
// synchronous state machine; the hub serialises concurrent HTTP access per
// register and snapshots after every successful mutation.
type Hub struct {
	MaxTickets int
	Store      *SnapshotStore
	Logger     zerolog.Logger

	mu      sync.Mutex
	handles map[string]*handle
}

type handle struct {
	mu  sync.Mutex
	eng *Engine
}

// NewHub constructs a hub.
func NewHub(store *SnapshotStore, maxTickets int, logger zerolog.Logger) *Hub {
	return &Hub{
		MaxTickets: maxTickets,
		Store:      store,
		Logger:     logger,
		handles:    make(map[string]*handle),
	}
}

// With runs fn against the register's engine under its lock, restoring the
// engine from Redis on first touch and snapshotting after fn succeeds.
func (h *Hub) With(ctx context.Context, registerID string, fn func(*Engine) error) error {
	h.mu.Lock()
	hd := h.handles[registerID]
	if hd == nil {
		hd = &handle{}
		h.handles[registerID] = hd
	}
	h.mu.Unlock()

	hd.mu.Lock()
	defer hd.mu.Unlock()

	if hd.eng == nil {
		hd.eng = h.load(ctx, registerID)
	}
	if err := fn(hd.eng); err != nil {
		return err
	}
	if data, err := hd.eng.Snapshot(); err == nil {
		if err := h.Store.Save(ctx, registerID, data); err != nil {
			h.Logger.Error().Err(err).Str("register_id", registerID).Msg("save register snapshot")
		}
	}
	return nil
}

func (h *Hub) load(ctx context.Context, registerID string) *Engine {
	data, err := h.Store.Load(ctx, registerID)
	if err != nil {
		h.Logger.Error().Err(err).Str("register_id", registerID).Msg("load register snapshot")
	}
	if len(data) > 0 {
		eng, err := Restore(data)
		if err == nil {
			return eng
		}
		h.Logger.Error().Err(err).Str("register_id", registerID).Msg("restore register snapshot")
	}
	return New(h.MaxTickets)
}
