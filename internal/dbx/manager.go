package dbx

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is the subset of *pgx.Conn the session layer uses. Tests inject fakes.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close(ctx context.Context) error
	IsClosed() bool
}

// DialFunc constructs a fresh database connection from the stored credentials.
type DialFunc func(ctx context.Context, cfg Config) (Conn, error)

// Dial is the default dialer.
func Dial(ctx context.Context, cfg Config) (Conn, error) {
	return pgx.Connect(ctx, cfg.DSN())
}

// Manager owns one database connection per logical session. Acquire is
// idempotent per session key: it returns the cached live handle, or a freshly
// rebuilt one when the prior handle died. Connections are never shared across
// sessions.
type Manager struct {
	cfg  Config
	dial DialFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(cfg Config) *Manager {
	return NewManagerWithDial(cfg, Dial)
}

// NewManagerWithDial builds a manager with a custom dialer. Integration
// tests use it to connect by URL instead of discrete config fields.
func NewManagerWithDial(cfg Config, dial DialFunc) *Manager {
	return &Manager{
		cfg:      cfg,
		dial:     dial,
		sessions: make(map[string]*Session),
	}
}

// Acquire returns the session bound to key, verifying connection liveness
// with a trivial probe and rebuilding the connection when the probe fails.
// Construction failures propagate; callers must not retry silently beyond
// the rebuild the session already performs.
func (m *Manager) Acquire(ctx context.Context, key string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[key]
	if !ok {
		s = &Session{key: key, cfg: m.cfg, dial: m.dial}
		m.sessions[key] = s
	}
	m.mu.Unlock()

	if err := s.ensureLive(ctx); err != nil {
		return nil, err
	}
	s.touch()
	return s, nil
}

// Release tears down the session bound to key. Closing is defensive: errors
// are swallowed and never reach the caller.
func (m *Manager) Release(ctx context.Context, key string) {
	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	if ok {
		s.close(ctx)
	}
}

// SweepIdle closes and drops every session not acquired since idleFor ago.
// Browser sessions end silently, so without sweeping each distinct visitor
// would pin one server connection until process shutdown. Returns the number
// of sessions removed.
func (m *Manager) SweepIdle(ctx context.Context, idleFor time.Duration) int {
	cutoff := time.Now().Add(-idleFor)

	m.mu.Lock()
	var stale []*Session
	for key, s := range m.sessions {
		if s.idleSince(cutoff) {
			delete(m.sessions, key)
			stale = append(stale, s)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.close(ctx)
	}
	if len(stale) > 0 {
		log.Printf("dbx: swept %d idle session connection(s)", len(stale))
	}
	return len(stale)
}

// RunSweeper sweeps idle sessions every interval until ctx is cancelled.
func (m *Manager) RunSweeper(ctx context.Context, interval, idleFor time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.SweepIdle(ctx, idleFor)
		}
	}
}

// Close tears down every session. Called when the application shuts down.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close(ctx)
	}
	log.Printf("dbx: closed %d session connection(s)", len(sessions))
}
