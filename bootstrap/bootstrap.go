// Package bootstrap wires configuration into a running ledger: store, Redis,
// services and the Fiber app. Both the CLI and the serverless handler use it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"airledger-backend/internal/application/geography"
	"airledger-backend/internal/application/ledger"
	"airledger-backend/internal/application/queries"
	"airledger-backend/internal/config"
	"airledger-backend/internal/domain"
	"airledger-backend/internal/infrastructure/database"
	"airledger-backend/internal/infrastructure/store"
	"airledger-backend/internal/interfaces/router"
	"airledger-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Deps are the long-lived resources behind the app.
type Deps struct {
	Config    *config.Config
	Store     *store.Store
	Redis     *redis.Client
	Ledger    *ledger.Service
	Queries   *queries.Service
	Geography *geography.Table
}

// OpenStore opens the backend named by cfg.StoreBackend. SQL backends are
// migrated when migrate is set.
func OpenStore(cfg *config.Config, migrate bool) (*store.Store, error) {
	switch cfg.StoreBackend {
	case constants.StoreLevelDB:
		b, err := store.OpenLevelDB(cfg.LevelDBPath)
		if err != nil {
			return nil, fmt.Errorf("open leveldb %s: %w", cfg.LevelDBPath, err)
		}
		return store.New(b), nil
	case constants.StorePostgres, constants.StoreSQLite:
		open := func() (*store.GormBackend, error) {
			if cfg.StoreBackend == constants.StorePostgres {
				db, err := database.Open(cfg.DatabaseURL)
				return store.NewGormBackend(db), err
			}
			db, err := database.OpenSQLite(cfg.SQLitePath)
			return store.NewGormBackend(db), err
		}
		b, err := open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.StoreBackend, err)
		}
		if migrate {
			if err := database.AutoMigrate(b.DB); err != nil {
				_ = b.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		return store.New(b), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// OpenRedis returns nil when url is empty; the health stats are then disabled.
func OpenRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// Open builds every dependency from cfg.
func Open(cfg *config.Config) (*Deps, error) {
	st, err := OpenStore(cfg, true)
	if err != nil {
		return nil, err
	}
	rdb, err := OpenRedis(cfg.RedisURL)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	geo, err := geography.Default()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	var treasury domain.Identity
	if cfg.TreasuryIdentity != "" {
		if treasury, err = domain.ParseIdentity(cfg.TreasuryIdentity); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("TREASURY_IDENTITY: %w", err)
		}
	}
	return &Deps{
		Config:    cfg,
		Store:     st,
		Redis:     rdb,
		Ledger:    &ledger.Service{Store: st, Treasury: treasury},
		Queries:   &queries.Service{Store: st},
		Geography: geo,
	}, nil
}

// Verify pings the store and Redis, logging each like a startup banner.
func (d *Deps) Verify(ctx context.Context) error {
	if err := d.Store.Ping(ctx); err != nil {
		return fmt.Errorf("store (%s) connection failed: %w", d.Config.StoreBackend, err)
	}
	log.Info().Str("backend", d.Config.StoreBackend).Msg("Store connected")
	if d.Redis != nil {
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info().Msg("Redis connected")
	}
	return nil
}

func (d *Deps) Close() error {
	var errs []error
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	errs = append(errs, d.Store.Close())
	return errors.Join(errs...)
}

// App builds the Fiber app over d.
func (d *Deps) App() *fiber.App {
	return router.CreateApp(d.Config, router.Services{
		Store:     d.Store,
		Redis:     d.Redis,
		Ledger:    d.Ledger,
		Queries:   d.Queries,
		Geography: d.Geography,
	})
}

// New loads config and returns the app for the serverless entry point.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	config.SetupLogging(cfg)
	deps, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return deps.App(), nil
}
