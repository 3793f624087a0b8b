// Package guard provides per-account exclusive sections.
//
// Locks are created on demand and dropped once no caller holds or waits on
// them, so memory tracks contention rather than the size of the account set.
// Multiple accounts are always acquired in ascending id order, which keeps
// the wait-for graph acyclic between concurrent transfers.
package guard

import (
	"context"
	"sort"
	"sync"
)

type lock struct {
	sem  chan struct{}
	refs int
}

// Guard hands out per-account locks. The zero value is not usable; use New.
type Guard struct {
	mu    sync.Mutex
	locks map[string]*lock
}

func New() *Guard {
	return &Guard{locks: make(map[string]*lock)}
}

// Handle is a set of held account locks. Release is idempotent.
type Handle struct {
	g    *Guard
	ids  []string
	once sync.Once
}

// IDs returns the held account ids in acquisition order.
func (h *Handle) IDs() []string {
	out := make([]string, len(h.ids))
	copy(out, h.ids)
	return out
}

// Release frees every lock held by the handle.
func (h *Handle) Release() {
	h.once.Do(func() {
		for i := len(h.ids) - 1; i >= 0; i-- {
			h.g.unlock(h.ids[i])
		}
	})
}

// Acquire locks every distinct id in ascending order. If ctx ends before all
// locks are held, the ones already taken are released and ctx.Err() is returned.
func (g *Guard) Acquire(ctx context.Context, ids ...string) (*Handle, error) {
	ordered := Order(ids...)
	held := make([]string, 0, len(ordered))

	for _, id := range ordered {
		if err := g.lock(ctx, id); err != nil {
			for i := len(held) - 1; i >= 0; i-- {
				g.unlock(held[i])
			}
			return nil, err
		}
		held = append(held, id)
	}

	return &Handle{g: g, ids: held}, nil
}

// Order returns the distinct ids sorted in the global acquisition order.
func Order(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (g *Guard) lock(ctx context.Context, id string) error {
	g.mu.Lock()
	l, ok := g.locks[id]
	if !ok {
		l = &lock{sem: make(chan struct{}, 1)}
		g.locks[id] = l
	}
	l.refs++
	g.mu.Unlock()

	// an idle lock is taken even when ctx is already done
	select {
	case l.sem <- struct{}{}:
		return nil
	default:
	}

	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		g.drop(id, l)
		return ctx.Err()
	}
}

func (g *Guard) unlock(id string) {
	g.mu.Lock()
	l, ok := g.locks[id]
	g.mu.Unlock()
	if !ok {
		return
	}
	<-l.sem
	g.drop(id, l)
}

func (g *Guard) drop(id string, l *lock) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(g.locks, id)
	}
}

// Len reports how many account locks are currently held or awaited.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}
