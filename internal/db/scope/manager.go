package scope

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zymptek/zymptek-api/internal/metrics"
)

// DefaultClaimStatement sets the claims transaction locally on postgres.
const DefaultClaimStatement = "SELECT set_config('request.jwt.claims', ?, true)"

// Conn is a dedicated database connection.
// *sql.Conn satisfies it.
type Conn interface {
	gorm.ConnPool
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

// Connector hands out dedicated connections.
type Connector interface {
	Conn(ctx context.Context) (Conn, error)
}

// SQLConnector takes connections from a *sql.DB pool.
type SQLConnector struct {
	DB *sql.DB
}

// Conn implements Connector.
func (c SQLConnector) Conn(ctx context.Context) (Conn, error) {
	return c.DB.Conn(ctx) //nolint:wrapcheck
}

// Manager runs callbacks inside scoped transactions.
type Manager struct {
	db             *gorm.DB
	connector      Connector
	claimStatement string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClaimStatement replaces the statement setting the claims.
// It receives the claim document as its only parameter.
func WithClaimStatement(stmt string) Option {
	return func(m *Manager) {
		m.claimStatement = stmt
	}
}

// WithConnector replaces the connection source.
func WithConnector(c Connector) Option {
	return func(m *Manager) {
		m.connector = c
	}
}

// New creates a Manager on db. Connections come from the pool of db unless
// WithConnector is given.
func New(db *gorm.DB, opts ...Option) (*Manager, error) {
	m := &Manager{
		db:             db,
		claimStatement: DefaultClaimStatement,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.connector == nil {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}

		m.connector = SQLConnector{DB: sqlDB}
	}

	return m, nil
}

// Run executes fn in a transaction on a dedicated connection whose first
// statement sets the claims of s. The transaction commits if fn returns nil
// and rolls back otherwise; the error of fn is returned unchanged.
// The connection is closed on every path, close failures are only logged.
func (m *Manager) Run(ctx context.Context, s Scope, fn func(tx *gorm.DB) error) error {
	claims, err := s.Claims()
	if err != nil {
		return err
	}

	conn, err := m.connector.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseUnavailable, err)
	}

	defer func() {
		if cErr := conn.Close(); cErr != nil {
			log.Error().Err(cErr).Str("scope", s.String()).Msg("failed to close scoped connection")
		}
	}()

	db := m.db.Session(&gorm.Session{NewDB: true, Context: ctx})
	db.Statement.ConnPool = conn

	start := time.Now()

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.claimStatement, claims).Error; err != nil {
			return fmt.Errorf("set %s claims: %w", s, err)
		}

		return fn(tx)
	})

	metrics.ScopedSession(s.String(), err == nil, time.Since(start).Seconds())

	return err
}

// Do is Run for callbacks returning a value.
func Do[T any](ctx context.Context, m *Manager, s Scope, fn func(tx *gorm.DB) (T, error)) (T, error) {
	var out T

	err := m.Run(ctx, s, func(tx *gorm.DB) error {
		v, err := fn(tx)
		if err != nil {
			return err
		}

		out = v

		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return out, nil
}
