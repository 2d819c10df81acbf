// Package bolt connects the ogm session layer to Neo4j over the official
// driver. It adapts explicit driver transactions to the ogm.Driver contract
// and classifies driver failures into the ogm error taxonomy.
package bolt

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/CaliLuke/go-neogm/ogm"
)

// Config holds connection settings for a Neo4j deployment.
type Config struct {
	// URI is the bolt or neo4j scheme endpoint. Encryption follows the
	// scheme (bolt:// vs bolt+s://).
	URI      string
	Username string
	Password string
	// Database selects a named database; "" uses the server default.
	Database string

	MaxConnectionPoolSize int
	ConnectionTimeout     time.Duration

	// ConnectAttempts bounds the connect-and-verify loop.
	ConnectAttempts int
	// ConnectBaseDelay is the first backoff delay; it doubles per attempt.
	ConnectBaseDelay time.Duration

	// Logger receives connection lifecycle events. Nil means no logging.
	Logger *zap.Logger
}

// DefaultConfig returns settings suitable for a local development server.
func DefaultConfig() Config {
	return Config{
		URI:                   "bolt://localhost:7687",
		Username:              "neo4j",
		MaxConnectionPoolSize: 50,
		ConnectionTimeout:     30 * time.Second,
		ConnectAttempts:       5,
		ConnectBaseDelay:      100 * time.Millisecond,
	}
}

// Validate reports configuration errors before any connection is attempted.
func (c Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("bolt: URI is required")
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("bolt: ConnectAttempts must be at least 1")
	}
	return nil
}

// Driver implements ogm.Driver on top of the Neo4j driver.
type Driver struct {
	config Config
	driver neo4j.DriverWithContext
	log    *zap.Logger
}

// Connect builds a driver and verifies connectivity, retrying with
// exponential backoff. The returned Driver is ready for use.
func Connect(ctx context.Context, config Config) (*Driver, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	auth := neo4j.BasicAuth(config.Username, config.Password, "")
	configure := func(dc *neo4j.Config) {
		if config.MaxConnectionPoolSize > 0 {
			dc.MaxConnectionPoolSize = config.MaxConnectionPoolSize
		}
		if config.ConnectionTimeout > 0 {
			dc.ConnectionAcquisitionTimeout = config.ConnectionTimeout
		}
	}

	var lastErr error
	for attempt := 0; attempt < config.ConnectAttempts; attempt++ {
		if attempt > 0 {
			delay := config.ConnectBaseDelay << (attempt - 1)
			if config.ConnectionTimeout > 0 && delay > config.ConnectionTimeout {
				delay = config.ConnectionTimeout
			}
			log.Debug("retrying connection",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &ogm.TransportError{Op: "connect", Attempts: attempt, Cause: ctx.Err()}
			}
		}
		driver, err := neo4j.NewDriverWithContext(config.URI, auth, configure)
		if err == nil {
			if err = driver.VerifyConnectivity(ctx); err == nil {
				log.Info("connected", zap.String("uri", config.URI), zap.String("database", config.Database))
				return &Driver{config: config, driver: driver, log: log}, nil
			}
			_ = driver.Close(ctx)
		}
		lastErr = err
	}
	return nil, &ogm.TransportError{Op: "connect", Attempts: config.ConnectAttempts, Cause: lastErr}
}

// Close releases the connection pool.
func (d *Driver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

// VerifyConnectivity checks the server is still reachable.
func (d *Driver) VerifyConnectivity(ctx context.Context) error {
	return classify("verify", d.driver.VerifyConnectivity(ctx))
}

// BeginTx opens an explicit transaction in a fresh session. The session is
// released when the transaction commits or rolls back.
func (d *Driver) BeginTx(ctx context.Context, readOnly bool) (ogm.Tx, error) {
	mode := neo4j.AccessModeWrite
	if readOnly {
		mode = neo4j.AccessModeRead
	}
	session := d.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: d.config.Database,
	})
	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		_ = session.Close(ctx)
		return nil, classify("begin", err)
	}
	return &boltTx{session: session, tx: tx}, nil
}

type boltTx struct {
	session neo4j.SessionWithContext
	tx      neo4j.ExplicitTransaction
}

func (t *boltTx) Run(ctx context.Context, statement string, params map[string]any) ([]ogm.Row, error) {
	result, err := t.tx.Run(ctx, statement, params)
	if err != nil {
		return nil, classify("run", err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, classify("collect", err)
	}
	rows := make([]ogm.Row, 0, len(records))
	for _, rec := range records {
		row := make(ogm.Row, len(rec.Keys))
		for i, key := range rec.Keys {
			row[key] = convertValue(rec.Values[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *boltTx) Commit(ctx context.Context) error {
	defer t.session.Close(ctx)
	return classify("commit", t.tx.Commit(ctx))
}

func (t *boltTx) Rollback(ctx context.Context) error {
	defer t.session.Close(ctx)
	return classify("rollback", t.tx.Rollback(ctx))
}

// classify wraps retryable driver failures as ogm.TransientError so the
// session layer's retry loop recognizes them.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if neo4j.IsRetryable(err) {
		return &ogm.TransientError{Op: op, Cause: err}
	}
	return err
}
