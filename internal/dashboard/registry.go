package dashboard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/churnboard/internal/platform/logger"
)

type entry struct {
	dash     *Dashboard
	lastSeen time.Time
}

// Registry maps browser sessions to dashboards. Idle sessions are evicted by
// Sweep unless a request is still in flight on them.
type Registry struct {
	log       *logger.Logger
	predictor Predictor
	opts      Options
	idleTTL   time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(p Predictor, log *logger.Logger, idleTTL time.Duration, opts Options) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Registry{
		log:       log.With("component", "SessionRegistry"),
		predictor: p,
		opts:      opts,
		idleTTL:   idleTTL,
		now:       time.Now,
		sessions:  map[string]*entry{},
	}
}

// GetOrCreate returns the dashboard for id. An empty or unparsable id, or one
// that has been evicted, yields a fresh session; created reports that case.
func (r *Registry) GetOrCreate(id string) (d *Dashboard, created bool) {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if e, ok := r.sessions[id]; ok {
			e.lastSeen = r.now()
			return e.dash, false
		}
	}

	id = uuid.NewString()
	d = New(id, r.predictor, r.log, r.opts)
	r.sessions[id] = &entry{dash: d, lastSeen: r.now()}
	r.log.Debug("session created", "session_id", id)
	return d, true
}

func (r *Registry) Get(id string) (*Dashboard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[strings.TrimSpace(id)]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.dash, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts idle sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.sessions {
		if e.lastSeen.After(cutoff) || e.dash.Busy() {
			continue
		}
		delete(r.sessions, id)
		n++
	}
	if n > 0 {
		r.log.Info("evicted idle sessions", "count", n, "remaining", len(r.sessions))
	}
	return n
}

// RunJanitor sweeps every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.Sweep()
		}
	}
}

// Wait blocks until all in-flight requests across sessions have resolved.
func (r *Registry) Wait() {
	r.mu.Lock()
	dashes := make([]*Dashboard, 0, len(r.sessions))
	for _, e := range r.sessions {
		dashes = append(dashes, e.dash)
	}
	r.mu.Unlock()
	for _, d := range dashes {
		d.Wait()
	}
}
