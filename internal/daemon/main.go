// Package daemon wires the database, the identity provider and the web service.
package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/zymptek/zymptek-api/internal/auth"
	"github.com/zymptek/zymptek-api/internal/config"
	"github.com/zymptek/zymptek-api/internal/db/dsn"
	"github.com/zymptek/zymptek-api/internal/db/models"
	"github.com/zymptek/zymptek-api/internal/db/scope"
	"github.com/zymptek/zymptek-api/internal/identity/gotrue"
	"github.com/zymptek/zymptek-api/internal/revocation"
	"github.com/zymptek/zymptek-api/internal/web"
	"github.com/zymptek/zymptek-api/internal/web/handler"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	revoked    *revocation.Store
	webService *web.Service
}

// Start runs the web service until SIGINT or SIGTERM and releases all resources.
func (d *Daemon) Start() error {
	errc := make(chan error, 1)

	go func() {
		errc <- d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
	}()

	d.webService.WaitShutdown()

	err := <-errc
	d.Close()

	return err
}

// Close releases the revocation storage and the database pool, whichever were opened.
func (d *Daemon) Close() {
	if d.revoked != nil {
		if err := d.revoked.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close revocation storage")
		}
	}

	closeDB(d.db)
}

// closeDB closes the pool behind db.
func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}

// OpenDB connects to postgres, applies the pool settings and migrates if enabled.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn.Create(cfg)), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database pool: %w", err)
	}

	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}

	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}

	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	if cfg.DB.AutoMigrate {
		if err = db.AutoMigrate(models.All()...); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return db, nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, web.ErrNilConfig
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDB(cfg, db)
}

// newWithDB wires the daemon on top of an open database.
// On failure everything opened so far, db included, is closed again.
func newWithDB(cfg *config.Config, db *gorm.DB) (*Daemon, error) {
	d := &Daemon{cfg: cfg, db: db}

	fail := func(err error) (*Daemon, error) {
		d.Close()
		return nil, err
	}

	scopes, err := scope.New(db)
	if err != nil {
		return fail(fmt.Errorf("failed to create scoped session manager: %w", err))
	}

	provider, err := gotrue.New(cfg.Identity)
	if err != nil {
		return fail(fmt.Errorf("failed to create identity provider client: %w", err))
	}

	if d.revoked, err = revocation.Open(cfg.Revocation, cfg.DB); err != nil {
		return fail(fmt.Errorf("failed to open revocation list: %w", err))
	}

	guard := auth.NewGuard(provider, scopes,
		auth.WithRevocationList(d.revoked),
		auth.WithLookupScope(cfg.DB.PrincipalLookupScope),
	)

	d.webService, err = web.New(cfg, handler.Deps{
		Provider: provider,
		Scopes:   scopes,
		Guard:    guard,
		Auth:     auth.NewService(provider, scopes, guard, auth.WithRevocationRecorder(d.revoked)),
	})
	if err != nil {
		return fail(fmt.Errorf("failed to create web service: %w", err))
	}

	log.Info().
		Str("lookup_scope", cfg.DB.PrincipalLookupScope).
		Str("revocation_backend", cfg.Revocation.Backend).
		Msg("daemon initialised")

	return d, nil
}
