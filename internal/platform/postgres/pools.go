package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// DriverName is the database/sql driver used for every pool.
const DriverName = "pgx"

// Pools holds the process-wide primary and replica connection pools.
type Pools struct {
	primary *sql.DB
	replica *sql.DB
}

var _ store.Pools = (*Pools)(nil)

// NewPools wraps already opened pools. A nil replica falls back to primary.
func NewPools(primary, replica *sql.DB) *Pools {
	if replica == nil {
		replica = primary
	}
	return &Pools{primary: primary, replica: replica}
}

// OpenPools opens the primary and replica pools described by cfg and checks
// that both answer a ping within cfg.ConnectTimeout.
func OpenPools(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Pools, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "pools"))

	primary, err := openPool(cfg.URL, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open primary pool: %w", err)
	}

	replica, err := openPool(cfg.ReplicaOrPrimary(), cfg)
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("failed to open replica pool: %w", err)
	}

	pools := &Pools{primary: primary, replica: replica}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := pools.Ping(pingCtx); err != nil {
		_ = pools.Close()
		return nil, err
	}

	log.Info("database pools ready",
		slog.Int("pool_size", cfg.PoolSize),
		slog.Int("max_overflow", cfg.MaxOverflow),
		slog.Duration("conn_recycle", cfg.ConnRecycle),
		slog.Bool("separate_replica", cfg.ReplicaURL != "" && cfg.ReplicaURL != cfg.URL))

	return pools, nil
}

func openPool(url string, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(DriverName, url)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(cfg.PoolSize)
	db.SetMaxOpenConns(cfg.PoolSize + cfg.MaxOverflow)
	db.SetConnMaxLifetime(cfg.ConnRecycle)

	return db, nil
}

// Primary returns the read-write pool.
func (p *Pools) Primary() *sql.DB {
	return p.primary
}

// Replica returns the read-only pool.
func (p *Pools) Replica() *sql.DB {
	return p.replica
}

// Ping checks both pools concurrently.
func (p *Pools) Ping(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := p.primary.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to ping primary database: %w", err)
		}
		return nil
	})
	if p.replica != p.primary {
		g.Go(func() error {
			if err := p.replica.PingContext(ctx); err != nil {
				return fmt.Errorf("failed to ping replica database: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Close closes both pools.
func (p *Pools) Close() error {
	errs := []error{p.primary.Close()}
	if p.replica != p.primary {
		errs = append(errs, p.replica.Close())
	}
	return errors.Join(errs...)
}
