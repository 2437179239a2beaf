package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	applog "storefront/internal/log"
)

type Options struct {
	Storage   Storage
	Publisher events.Publisher
	Topic     string
	Policy    Policy
	// MirrorTimeout bounds each remote mirror call and event publish.
	MirrorTimeout time.Duration
	// IdleAfter is how long a store may go unopened before Sweep evicts it.
	IdleAfter time.Duration
}

// Manager hands out one Store per session.
type Manager struct {
	opts   Options
	mu     sync.Mutex
	stores map[string]*Store
}

func NewManager(opts Options) *Manager {
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.Policy != PolicyMerge {
		opts.Policy = PolicyReplace
	}
	if opts.MirrorTimeout <= 0 {
		opts.MirrorTimeout = 10 * time.Second
	}
	if opts.IdleAfter <= 0 {
		opts.IdleAfter = 30 * time.Minute
	}
	return &Manager{opts: opts, stores: map[string]*Store{}}
}

// Open returns the session's store, loading it from storage on first use, and
// binds remote to it. A nil remote means the session is signed out.
func (m *Manager) Open(ctx context.Context, sessionID string, remote Remote) *Store {
	m.mu.Lock()
	st, ok := m.stores[sessionID]
	m.mu.Unlock()
	if !ok {
		loaded := m.load(ctx, sessionID)
		m.mu.Lock()
		if st, ok = m.stores[sessionID]; !ok {
			st = loaded
			m.stores[sessionID] = st
		}
		m.mu.Unlock()
	}
	st.bind(remote)
	return st
}

// Len is the number of stores held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// Forget drops the in-memory store after its queued mirrors finish. The
// durable record stays.
func (m *Manager) Forget(sessionID string) {
	m.mu.Lock()
	st := m.stores[sessionID]
	delete(m.stores, sessionID)
	m.mu.Unlock()
	if st != nil {
		st.Flush()
	}
}

// Flush waits for every queued mirror task of every open store.
func (m *Manager) Flush() {
	m.mu.Lock()
	all := make([]*Store, 0, len(m.stores))
	for _, st := range m.stores {
		all = append(all, st)
	}
	m.mu.Unlock()
	for _, st := range all {
		st.Flush()
	}
}

// Sweep evicts stores that have not been opened for IdleAfter and have no
// mirror task in flight. An evicted empty cart also loses its durable record,
// since a missing record loads as an empty cart. It returns how many stores
// were evicted.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := time.Now().Add(-m.opts.IdleAfter)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for sid, st := range m.stores {
		idle, empty := st.evictable(cutoff)
		if !idle {
			continue
		}
		delete(m.stores, sid)
		n++
		if empty {
			if err := m.opts.Storage.Delete(ctx, sid, StorageKey); err != nil {
				applog.Warn(nil, "cart.evict.delete.fail", err, map[string]any{"sid": sid})
			}
		}
	}
	if n > 0 {
		applog.Info(nil, "cart.evict", map[string]any{"evicted": n, "open": len(m.stores)})
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep(ctx)
		}
	}
}

// load reads the persisted snapshot. Unreadable or malformed data yields an
// empty cart; invalid lines are dropped and duplicates folded.
func (m *Manager) load(ctx context.Context, sessionID string) *Store {
	st := &Store{sessionID: sessionID, m: m, lines: []domain.CartLine{}}
	raw, err := m.opts.Storage.Get(ctx, sessionID, StorageKey)
	if err != nil {
		applog.Warn(nil, "cart.load.fail", err, map[string]any{"sid": sessionID})
		return st
	}
	if len(raw) == 0 {
		return st
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		applog.Warn(nil, "cart.load.corrupt", err, map[string]any{"sid": sessionID})
		return st
	}
	st.lines = domain.NormalizeLines(lines)
	return st
}

func (m *Manager) publishes() bool {
	_, nop := m.opts.Publisher.(events.Nop)
	return !nop
}

func (m *Manager) publish(ctx context.Context, ev events.CartEvent) {
	if !m.publishes() {
		return
	}
	if err := m.opts.Publisher.PublishEvent(ctx, m.opts.Topic, ev.SessionID, ev); err != nil {
		applog.Warn(nil, "cart.event.fail", err, map[string]any{"sid": ev.SessionID, "op": ev.Op})
	}
}
