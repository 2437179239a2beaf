package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/events"
	applog "storefront/internal/log"
)

// Store is one session's cart. Safe for concurrent use.
type Store struct {
	sessionID string
	m         *Manager

	mu     sync.Mutex
	lines  []domain.CartLine
	remote Remote
	// tail is closed when the most recently queued mirror task finishes.
	tail     chan struct{}
	lastUsed time.Time
}

func (s *Store) bind(r Remote) {
	s.mu.Lock()
	s.remote = r
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// evictable reports whether the store was last opened before cutoff with no
// mirror task pending, and whether it is empty. A store locked by a running
// operation is never idle.
func (s *Store) evictable(cutoff time.Time) (idle, empty bool) {
	if !s.mu.TryLock() {
		return false, false
	}
	defer s.mu.Unlock()
	if !s.lastUsed.Before(cutoff) || !closed(s.tail) {
		return false, false
	}
	return true, len(s.lines) == 0
}

func closed(ch chan struct{}) bool {
	if ch == nil {
		return true
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Count is the sum of all line quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

// Total is the sum of price times quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

func (s *Store) countLocked() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) totalLocked() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range s.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func (s *Store) indexLocked(productID string) int {
	for i, l := range s.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts qty units of p in the cart, folding into an existing line for the
// same product. Quantities below one are treated as one.
func (s *Store) Add(ctx context.Context, p domain.Product, qty int) Result {
	p.Normalize()
	if p.ID == "" {
		return Result{Message: "Invalid product"}
	}
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(p.ID); i >= 0 {
		s.lines[i].Quantity += qty
	} else {
		s.lines = append(s.lines, domain.CartLine{Product: p, Quantity: qty})
	}
	s.persistLocked(ctx)
	mirror := s.mirrorLocked(ctx, "add", p.ID, qty, func(ctx context.Context, r Remote) error {
		return r.AddItem(ctx, p.ID, qty)
	})
	return Result{OK: true, Message: "Added to cart successfully", Mirror: mirror}
}

// UpdateQuantity sets the line's quantity. Zero or less removes the line; an
// unknown product is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, qty int) Result {
	productID = strings.TrimSpace(productID)
	if qty <= 0 {
		return s.Remove(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(productID)
	if i < 0 {
		return Result{OK: true}
	}
	s.lines[i].Quantity = qty
	s.persistLocked(ctx)
	mirror := s.mirrorLocked(ctx, "update", productID, qty, func(ctx context.Context, r Remote) error {
		return r.UpdateItem(ctx, productID, qty)
	})
	return Result{OK: true, Message: "Cart updated", Mirror: mirror}
}

// Remove drops the product's line. An unknown product is a no-op.
func (s *Store) Remove(ctx context.Context, productID string) Result {
	productID = strings.TrimSpace(productID)

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(productID)
	if i < 0 {
		return Result{OK: true}
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.persistLocked(ctx)
	mirror := s.mirrorLocked(ctx, "remove", productID, 0, func(ctx context.Context, r Remote) error {
		return r.RemoveItem(ctx, productID)
	})
	return Result{OK: true, Message: "Item removed", Mirror: mirror}
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = []domain.CartLine{}
	s.persistLocked(ctx)
	mirror := s.mirrorLocked(ctx, "clear", "", 0, func(ctx context.Context, r Remote) error {
		return r.ClearCart(ctx)
	})
	return Result{OK: true, Message: "Cart cleared", Mirror: mirror}
}

// Sync pulls the remote cart after sign-in. Under PolicyReplace the remote
// lines replace the local ones. Under PolicyMerge remote lines come first,
// local-only lines are appended and pushed up, and a product on both sides
// keeps the remote quantity. A failed fetch leaves the local cart untouched.
//
// The store stays locked from before the fetch until the new lines are in
// place: queued mirrors land first so the fetch sees them, and mutations that
// arrive meanwhile apply on top of the synced cart.
func (s *Store) Sync(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.remote
	if r == nil {
		return Result{Message: "Not signed in"}
	}

	remote, err := s.fetchLocked(ctx, r)
	if err != nil {
		applog.Warn(nil, "cart.sync.fail", err, map[string]any{"sid": s.sessionID})
		return Result{OK: true, Message: "Using saved cart"}
	}
	remote = domain.NormalizeLines(remote)

	var push []domain.CartLine
	if s.m.opts.Policy == PolicyMerge {
		seen := make(map[string]bool, len(remote))
		for _, l := range remote {
			seen[l.Product.ID] = true
		}
		for _, l := range s.lines {
			if !seen[l.Product.ID] {
				remote = append(remote, l)
				push = append(push, l)
			}
		}
	}
	s.lines = remote
	s.persistLocked(ctx)

	var call func(context.Context, Remote) error
	if len(push) > 0 {
		call = func(ctx context.Context, r Remote) error {
			var errs []error
			for _, l := range push {
				if err := r.AddItem(ctx, l.Product.ID, l.Quantity); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		}
	}
	mirror := s.mirrorLocked(ctx, "sync", "", 0, call)
	return Result{OK: true, Message: "Cart synced", Mirror: mirror}
}

// fetchLocked waits for pending mirror tasks, then reads the remote cart.
func (s *Store) fetchLocked(ctx context.Context, r Remote) ([]domain.CartLine, error) {
	if s.tail != nil {
		select {
		case <-s.tail:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.Cart(ctx)
}

// Flush blocks until every queued mirror task has finished.
func (s *Store) Flush() {
	s.mu.Lock()
	tail := s.tail
	s.mu.Unlock()
	if tail != nil {
		<-tail
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.lines == nil {
		s.lines = []domain.CartLine{}
	}
	b, err := json.Marshal(s.lines)
	if err == nil {
		err = s.m.opts.Storage.Set(ctx, s.sessionID, StorageKey, b)
	}
	if err != nil {
		applog.Error(nil, "cart.persist.fail", err, map[string]any{"sid": s.sessionID})
	}
}

// mirrorLocked queues call behind any earlier task for this store so remote
// mutations land in the order they were made locally. It returns nil when the
// session is signed out or call is nil. The event is published either way.
func (s *Store) mirrorLocked(ctx context.Context, op, productID string, qty int, call func(context.Context, Remote) error) <-chan error {
	r := s.remote
	if r == nil {
		call = nil
	}
	if call == nil && !s.m.publishes() {
		return nil
	}

	ev := events.CartEvent{
		SessionID: s.sessionID,
		Op:        op,
		ProductID: productID,
		Quantity:  qty,
		Count:     s.countLocked(),
		Total:     s.totalLocked().StringFixed(2),
	}
	prev := s.tail
	done := make(chan struct{})
	s.tail = done

	var out chan error
	if call != nil {
		out = make(chan error, 1)
	}
	base := context.WithoutCancel(ctx)
	timeout := s.m.opts.MirrorTimeout

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		tctx, cancel := context.WithTimeout(base, timeout)
		defer cancel()

		var err error
		if call != nil {
			err = call(tctx, r)
			if err != nil {
				applog.Error(nil, "cart.mirror.fail", err, map[string]any{"sid": s.sessionID, "op": op, "product_id": productID})
				ev.MirrorErr = err.Error()
			} else {
				ev.Mirrored = true
			}
		}
		ev.At = time.Now().UTC()
		s.m.publish(tctx, ev)

		if out != nil {
			out <- err
			close(out)
		}
	}()
	return out
}
