package ogm

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Row is one result record, keyed by return column.
type Row map[string]any

// RawNode is a stored node as returned by the transport, before hydration.
type RawNode struct {
	ElementID string
	Labels    []string
	Props     map[string]any
}

// RawRelationship is a stored relationship as returned by the transport.
type RawRelationship struct {
	ElementID      string
	Type           string
	StartElementID string
	EndElementID   string
	Props          map[string]any
}

// Tx is one open database transaction.
type Tx interface {
	Run(ctx context.Context, statement string, params map[string]any) ([]Row, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Driver opens transactions against a graph database. The bolt package
// provides the production implementation.
type Driver interface {
	BeginTx(ctx context.Context, readOnly bool) (Tx, error)
	Close(ctx context.Context) error
}

// RetryConfig bounds the retry loop applied to transient failures.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, first included.
	MaxAttempts int
	// BaseDelay is the wait before the first retry; it doubles per attempt.
	BaseDelay time.Duration
}

// DefaultRetryConfig retries up to four times with exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 4, BaseDelay: 100 * time.Millisecond}
}

// Option configures a Database.
type Option func(*Database)

// WithLogger attaches a structured logger. The default logger is a no-op.
func WithLogger(log *zap.Logger) Option {
	return func(db *Database) { db.log = log }
}

// WithRetry replaces the default retry policy.
func WithRetry(rc RetryConfig) Option {
	return func(db *Database) { db.retry = rc }
}

// WithRegistry binds the database to a registry other than the default.
func WithRegistry(r *Registry) Option {
	return func(db *Database) { db.registry = r }
}

// Database is the session facade: it owns a driver, a registry, a logger,
// and a retry policy, and exposes read and write entry points. A Database
// is safe for concurrent use if its driver is.
type Database struct {
	driver   Driver
	registry *Registry
	log      *zap.Logger
	retry    RetryConfig
}

// NewDatabase wraps a driver with the default registry, a no-op logger,
// and the default retry policy.
func NewDatabase(driver Driver, opts ...Option) *Database {
	db := &Database{
		driver:   driver,
		registry: defaultRegistry,
		log:      zap.NewNop(),
		retry:    DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Registry returns the registry the database resolves kinds against.
func (db *Database) Registry() *Registry { return db.registry }

// Close releases the underlying driver.
func (db *Database) Close(ctx context.Context) error {
	return db.driver.Close(ctx)
}

// Read runs one statement in a read transaction and returns its rows.
// Transient failures are retried per the database's policy.
func (db *Database) Read(ctx context.Context, statement string, params map[string]any) ([]Row, error) {
	var rows []Row
	err := db.inTx(ctx, true, "read", func(tx Tx) error {
		var err error
		rows, err = tx.Run(ctx, statement, params)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Write runs fn inside a write transaction, committing on success and
// rolling back on error. Transient failures restart fn in a fresh
// transaction, so fn must be safe to run more than once.
func (db *Database) Write(ctx context.Context, fn func(tx Tx) error) error {
	return db.inTx(ctx, false, "write", fn)
}

func (db *Database) inTx(ctx context.Context, readOnly bool, op string, fn func(tx Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < db.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := db.retry.BaseDelay << (attempt - 1)
			db.log.Debug("retrying transaction",
				zap.String("op", op),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return multierr.Append(lastErr, ctx.Err())
			case <-timer.C:
			}
		}
		err := db.attempt(ctx, readOnly, fn)
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsTransient(err) {
			return err
		}
	}
	return &TransportError{Op: op, Attempts: db.retry.MaxAttempts, Cause: lastErr}
}

func (db *Database) attempt(ctx context.Context, readOnly bool, fn func(tx Tx) error) error {
	tx, err := db.driver.BeginTx(ctx, readOnly)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return multierr.Append(err, tx.Rollback(ctx))
	}
	return tx.Commit(ctx)
}
