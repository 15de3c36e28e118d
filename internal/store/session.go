package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-api/internal/platform/logger"
)

// SessionManager opens request-scoped sessions over a shared set of pools.
type SessionManager struct {
	pools   Pools
	prePing bool
	logger  *slog.Logger
}

// NewSessionManager creates a SessionManager. When prePing is set every
// connection is pinged before a session first uses it.
func NewSessionManager(pools Pools, prePing bool, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		pools:   pools,
		prePing: prePing,
		logger:  logger.With(slog.String("component", "session_manager")),
	}
}

// Begin opens the unit of work for one inbound request under a fresh scope id.
// The caller must call End on the returned session exactly when the request ends.
func (m *SessionManager) Begin(ctx context.Context) *Session {
	id := uuid.New().String()
	log := logger.FromContextOrDefault(ctx, m.logger).With(slog.String("session_id", id))
	log.Debug("session opened")

	return &Session{
		id:      id,
		pools:   m.pools,
		prePing: m.prePing,
		logger:  log,
	}
}

// HealthProbe runs SELECT 1 against the primary pool in a throwaway session.
// It reports false on any failure and never returns an error or panics.
func (m *SessionManager) HealthProbe(ctx context.Context) (healthy bool) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	defer func() {
		if p := recover(); p != nil {
			log.Error("health probe panicked", slog.Any("panic", p))
			healthy = false
		}
	}()

	s := m.Begin(ctx)
	defer s.End()

	conn, err := s.primaryConn(ctx)
	if err != nil {
		log.Error("health probe could not reach the primary database",
			slog.String("error", err.Error()))
		return false
	}

	var one int
	if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		log.Error("health probe query failed",
			slog.String("error", err.Error()))
		return false
	}
	return one == 1
}

// Session is the unit of work bound to one inbound request. It is not shared
// between requests; the mutex only guards against handlers that fan out.
type Session struct {
	id      string
	pools   Pools
	prePing bool
	logger  *slog.Logger

	mu      sync.Mutex
	primary *sql.Conn
	replica *sql.Conn
	tx      *sql.Tx
	dirty   bool
	closed  bool
}

// ID returns the scope id minted when the session was opened.
func (s *Session) ID() string {
	return s.id
}

// Logger returns the session's logger, tagged with its scope id.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// InTransaction reports whether a transaction is active on the session.
func (s *Session) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx != nil
}

// Route returns the handle a statement of the given kind must run on.
//
// Writes go to the active transaction, or to the session's primary connection
// when there is none. Reads go to the replica, except inside a transaction
// that has already written, where they join the transaction so they observe
// its pending changes.
func (s *Session) Route(ctx context.Context, kind StatementKind) (DBTX, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}

	if kind == StatementWrite {
		if s.tx != nil {
			s.dirty = true
			return s.tx, nil
		}
		return s.primaryConnLocked(ctx)
	}

	if s.tx != nil && s.dirty {
		return s.tx, nil
	}
	return s.replicaConnLocked(ctx)
}

// End releases the session: an unfinished transaction is rolled back and
// every pinned connection returns to its pool. Calling End again is a no-op.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.tx != nil {
		err := s.tx.Rollback()
		switch {
		case err == nil:
			s.logger.Warn("rolled back unfinished transaction at end of session")
		case !errors.Is(err, sql.ErrTxDone):
			s.logger.Error("failed to roll back unfinished transaction",
				slog.String("error", err.Error()))
		}
		s.tx = nil
		s.dirty = false
	}

	s.release("primary", s.primary)
	s.release("replica", s.replica)
	s.primary = nil
	s.replica = nil

	s.logger.Debug("session closed")
}

func (s *Session) release(role string, conn *sql.Conn) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		s.logger.Error("failed to release connection",
			slog.String("pool", role),
			slog.String("error", err.Error()))
	}
}

// beginTx starts a transaction on the session's primary connection.
func (s *Session) beginTx(ctx context.Context) (*sql.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.tx != nil {
		return nil, errors.New("transaction already active")
	}

	conn, err := s.primaryConnLocked(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	s.dirty = false
	return tx, nil
}

// clearTx forgets tx once it has been committed or rolled back.
func (s *Session) clearTx(tx *sql.Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == tx {
		s.tx = nil
		s.dirty = false
	}
}

func (s *Session) primaryConn(ctx context.Context) (*sql.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.primaryConnLocked(ctx)
}

func (s *Session) primaryConnLocked(ctx context.Context) (*sql.Conn, error) {
	if s.primary == nil {
		conn, err := s.acquire(ctx, s.pools.Primary(), "primary")
		if err != nil {
			return nil, err
		}
		s.primary = conn
	}
	return s.primary, nil
}

func (s *Session) replicaConnLocked(ctx context.Context) (*sql.Conn, error) {
	if s.replica == nil {
		conn, err := s.acquire(ctx, s.pools.Replica(), "replica")
		if err != nil {
			return nil, err
		}
		s.replica = conn
	}
	return s.replica, nil
}

// acquire checks a connection out of db. With pre-ping enabled a connection
// that fails its ping is discarded and a fresh one is tried once.
func (s *Session) acquire(ctx context.Context, db *sql.DB, role string) (*sql.Conn, error) {
	log := s.logger.With(slog.String("pool", role))

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		conn, err := db.Conn(ctx)
		if err != nil {
			log.Error("failed to acquire connection", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to acquire %s connection: %w", role, err)
		}
		if !s.prePing {
			return conn, nil
		}

		if err := conn.PingContext(ctx); err != nil {
			log.Warn("connection failed pre-ping",
				slog.Int("attempt", attempt+1),
				slog.String("error", err.Error()))
			discard(conn)
			lastErr = err
			continue
		}
		return conn, nil
	}

	return nil, fmt.Errorf("failed to acquire %s connection: %w", role, lastErr)
}

// discard closes conn and tells the pool not to reuse the underlying connection.
func discard(conn *sql.Conn) {
	_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	_ = conn.Close()
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx.
func SessionFrom(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}
