package matching

import (
	"context"
	"sync"
)

// Directory is the provider-directory collaborator: it supplies the candidate
// pool for a matching run. The real directory lives outside this system.
type Directory interface {
	Candidates(ctx context.Context) ([]Provider, error)
}

// StaticDirectory is an in-process Directory backed by a fixed provider list,
// used for local runs and tests until the external directory is wired.
type StaticDirectory struct {
	mu        sync.RWMutex
	providers []Provider
}

func NewStaticDirectory(providers []Provider) *StaticDirectory {
	return &StaticDirectory{providers: providers}
}

func (d *StaticDirectory) Candidates(_ context.Context) ([]Provider, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Provider, len(d.providers))
	copy(out, d.providers)
	return out, nil
}

// Upsert replaces or appends a provider entry.
func (d *StaticDirectory) Upsert(p Provider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, existing := range d.providers {
		if existing.ID == p.ID {
			d.providers[i] = p
			return
		}
	}
	d.providers = append(d.providers, p)
}
