package alerts

import (
	"context"
	"sync"
)

// Publisher delivers advisory signals to the notification collaborator.
// Implementations must be safe for concurrent use; services treat Publish as
// fire-and-forget and only log failures.
type Publisher interface {
	Publish(ctx context.Context, alert Alert) error
}

// MemoryPublisher records alerts in memory. Used in unit tests and as the
// default sink when no broker is configured.
type MemoryPublisher struct {
	mu     sync.Mutex
	alerts []Alert
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, alert Alert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, alert)
	return nil
}

// Published returns a copy of everything published so far.
func (p *MemoryPublisher) Published() []Alert {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Alert, len(p.alerts))
	copy(out, p.alerts)
	return out
}

// ByKind filters published alerts by kind.
func (p *MemoryPublisher) ByKind(kind Kind) []Alert {
	var out []Alert
	for _, a := range p.Published() {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}
