package manifest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit bounds concurrent fetches during Register
const DefaultLimit = 4

// Registrar stores a named sound loaded from a locator
type Registrar interface {
	AddAudio(ctx context.Context, name, url string) error
}

// Register adds every manifest entry to r, at most limit at a time
// A failed entry does not cancel its siblings; all failures are joined
func Register(ctx context.Context, r Registrar, m *Manifest, limit int) error {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var g errgroup.Group
	g.SetLimit(limit)

	var (
		mu   sync.Mutex
		errs []error
	)
	for _, e := range m.Sounds {
		g.Go(func() error {
			if err := r.AddAudio(ctx, e.Name, m.Locator(e)); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", e.Name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	return errors.Join(errs...)
}

// Remover drops a stored sound; registrars implementing it are pruned on reload
type Remover interface {
	RemoveAudio(name string) bool
}

// Prune removes from r the names of prev that next no longer lists
// Returns the names actually removed; a no-op when r is not a Remover
func Prune(r Registrar, prev, next *Manifest) []string {
	rm, ok := r.(Remover)
	if !ok || prev == nil || next == nil {
		return nil
	}

	keep := make(map[string]bool, len(next.Sounds))
	for _, e := range next.Sounds {
		keep[e.Name] = true
	}

	var removed []string
	for _, name := range prev.Names() {
		if !keep[name] && rm.RemoveAudio(name) {
			removed = append(removed, name)
		}
	}
	return removed
}
