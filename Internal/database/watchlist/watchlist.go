package watchlist

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrFull = errors.New("watchlist is full")

// Watchlist is the in-process view of a Store. Every change is written
// through before the call returns; concurrent changes are serialized and
// the last one wins.
type Watchlist struct {
	mu    sync.Mutex
	store Store
	max   int
	list  []string
}

// Load reads the current list from store.
func Load(ctx context.Context, store Store, max int) (*Watchlist, error) {
	max = Limit(max)
	list, err := store.Read(ctx)
	if err != nil {
		return nil, err
	}
	return &Watchlist{store: store, max: max, list: Sanitize(list, max)}, nil
}

// List returns a copy in insertion order.
func (w *Watchlist) List() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string{}, w.list...)
}

func (w *Watchlist) Has(ticker string) bool {
	t := normalize(ticker)

	w.mu.Lock()
	defer w.mu.Unlock()
	return indexOf(w.list, t) >= 0
}

// Set returns the membership predicate over a snapshot of the list.
func (w *Watchlist) Set() map[string]bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	set := make(map[string]bool, len(w.list))
	for _, t := range w.list {
		set[t] = true
	}
	return set
}

// Add appends ticker unless it is already present. Adding to a full list
// returns ErrFull and changes nothing.
func (w *Watchlist) Add(ctx context.Context, ticker string) error {
	t := normalize(ticker)
	if t == "" {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if indexOf(w.list, t) >= 0 {
		return nil
	}
	if len(w.list) >= w.max {
		return ErrFull
	}
	return w.commit(ctx, append(append([]string{}, w.list...), t))
}

func (w *Watchlist) Remove(ctx context.Context, ticker string) error {
	t := normalize(ticker)

	w.mu.Lock()
	defer w.mu.Unlock()
	i := indexOf(w.list, t)
	if i < 0 {
		return nil
	}
	return w.commit(ctx, without(w.list, i))
}

// Toggle removes ticker if present and adds it otherwise. It reports
// whether the ticker is watched afterwards, which on a failed write is the
// state before the call.
func (w *Watchlist) Toggle(ctx context.Context, ticker string) (bool, error) {
	t := normalize(ticker)
	if t == "" {
		return false, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if i := indexOf(w.list, t); i >= 0 {
		if err := w.commit(ctx, without(w.list, i)); err != nil {
			return true, err
		}
		return false, nil
	}
	if len(w.list) >= w.max {
		return false, ErrFull
	}
	if err := w.commit(ctx, append(append([]string{}, w.list...), t)); err != nil {
		return false, err
	}
	return true, nil
}

// Ping checks the backing store when it has a connection to check.
func (w *Watchlist) Ping(ctx context.Context) error {
	if p, ok := w.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// commit persists next and adopts it only if the write succeeded.
func (w *Watchlist) commit(ctx context.Context, next []string) error {
	if err := w.store.Write(ctx, next); err != nil {
		return err
	}
	w.list = next
	return nil
}

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func indexOf(list []string, t string) int {
	for i, s := range list {
		if s == t {
			return i
		}
	}
	return -1
}

func without(list []string, i int) []string {
	out := make([]string, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}
