package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-evaluasi-api/pkg/errors"
)

type sessionGauge interface {
	SetWorkspaceSessions(n int)
}

type session struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Manager keeps controllers in memory and evicts idle ones.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session
	stores   Stores
	opts     Options
	ttl      time.Duration
	gauge    sessionGauge
	logger   *zap.Logger
}

// NewManager constructs a session manager. gauge may be nil.
func NewManager(stores Stores, opts Options, ttl time.Duration, gauge sessionGauge) *Manager {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		sessions: make(map[string]*session),
		stores:   stores,
		opts:     opts,
		ttl:      ttl,
		gauge:    gauge,
		logger:   opts.Logger,
	}
}

// Open creates a session and performs its initial load.
func (m *Manager) Open(ctx context.Context) *Controller {
	ctrl := NewController(uuid.NewString(), m.stores, m.opts)

	m.mu.Lock()
	m.sessions[ctrl.ID()] = &session{ctrl: ctrl, lastSeen: m.opts.Now()}
	m.publish()
	m.mu.Unlock()

	ctrl.Load(ctx)
	m.logger.Info("workspace opened", zap.String("workspace_id", ctrl.ID()))
	return ctrl
}

// Get returns a live session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		if ok {
			m.drop(id)
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "workspace not found")
	}
	s.lastSeen = m.opts.Now()
	return s.ctrl, nil
}

// Close discards a session. Unknown ids are ignored.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drop(id)
}

// Len reports the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictExpired drops every session idle for longer than the TTL.
func (m *Manager) EvictExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, s := range m.sessions {
		if m.expired(s) {
			m.drop(id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Info("workspaces evicted", zap.Int("count", evicted))
	}
	return evicted
}

// StartJanitor evicts idle sessions every interval until ctx is done.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.ttl / 4
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.EvictExpired()
			}
		}
	}()
}

func (m *Manager) expired(s *session) bool {
	return m.opts.Now().Sub(s.lastSeen) > m.ttl
}

// Callers hold m.mu.
func (m *Manager) drop(id string) {
	if _, ok := m.sessions[id]; !ok {
		return
	}
	delete(m.sessions, id)
	m.publish()
}

func (m *Manager) publish() {
	if m.gauge != nil {
		m.gauge.SetWorkspaceSessions(len(m.sessions))
	}
}
