package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned for session ids the registry does not hold.
var ErrNotFound = errors.New("session not found")

// State is anything a session owns. Close must stop its timers.
type State interface {
	Close() error
}

// Registry maps session ids to per-session state of one app.
type Registry[T State] struct {
	mu      sync.Mutex
	name    string
	states  map[string]T
	seen    map[string]time.Time
	factory func(id string) T
	now     func() time.Time
	logger  *zap.Logger
}

// NewRegistry 创建会话注册表；factory 为新会话构造状态
func NewRegistry[T State](name string, factory func(id string) T, logger *zap.Logger) *Registry[T] {
	return &Registry[T]{
		name:    name,
		states:  make(map[string]T),
		seen:    make(map[string]time.Time),
		factory: factory,
		now:     time.Now,
		logger:  logger,
	}
}

// NewID returns a fresh session id.
func NewID() string { return uuid.NewString() }

func (r *Registry[T]) Get(id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	r.seen[id] = r.now()
	return s, nil
}

// GetOrCreate returns the state for id, creating it on first use. An empty id
// gets a new one; the id actually used is returned.
func (r *Registry[T]) GetOrCreate(id string) (string, T) {
	if id == "" {
		id = NewID()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[id] = r.now()
	if s, ok := r.states[id]; ok {
		return id, s
	}
	s := r.factory(id)
	r.states[id] = s
	r.logger.Debug("session created", zap.String("app", r.name), zap.String("session_id", id))
	return id, s
}

// Delete removes the session and closes its state.
func (r *Registry[T]) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.states[id]
	delete(r.states, id)
	delete(r.seen, id)
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	if err := r.closeState(id, s); err != nil {
		return err
	}
	r.logger.Debug("session deleted", zap.String("app", r.name), zap.String("session_id", id))
	return nil
}

func (r *Registry[T]) closeState(id string, s T) error {
	if err := s.Close(); err != nil {
		r.logger.Warn("failed to close session state",
			zap.String("app", r.name),
			zap.String("session_id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Reap closes every session not touched by Get or GetOrCreate within idle and
// returns how many were removed.
func (r *Registry[T]) Reap(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	expired := make(map[string]T)
	for id, at := range r.seen {
		if at.Before(cutoff) {
			expired[id] = r.states[id]
			delete(r.states, id)
			delete(r.seen, id)
		}
	}
	r.mu.Unlock()

	for id, s := range expired {
		_ = r.closeState(id, s)
	}
	if len(expired) > 0 {
		r.logger.Info("idle sessions reaped", zap.String("app", r.name), zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RunReaper calls Reap every interval until ctx is cancelled.
func (r *Registry[T]) RunReaper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reap(idle)
		}
	}
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

// Close tears down every session.
func (r *Registry[T]) Close() error {
	r.mu.Lock()
	states := r.states
	r.states = make(map[string]T)
	r.seen = make(map[string]time.Time)
	r.mu.Unlock()

	var errs []error
	for id, s := range states {
		if err := r.closeState(id, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
