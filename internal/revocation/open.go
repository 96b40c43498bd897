package revocation

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"

	"github.com/zymptek/zymptek-api/internal/config"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

var (
	// ErrStorageUnavailable is returned if the postgres storage can't connect.
	ErrStorageUnavailable = errors.New("revocation storage unavailable")

	// ErrUnknownBackend is returned for a backend other than memory or postgres.
	ErrUnknownBackend = errors.New("unknown revocation backend")
)

// Open creates the Store configured by cfg. The postgres backend shares the
// connection settings of the application database.
func Open(cfg config.Revocation, db config.DB) (*Store, error) {
	var (
		storage fiber.Storage
		err     error
	)

	switch cfg.Backend {
	case BackendMemory, "":
		storage, err = NewMemoryStorage(cfg.MaxEntries)
	case BackendPostgres:
		storage, err = NewPostgresStorage(cfg, db)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	if err != nil {
		return nil, err
	}

	log.Info().Str("backend", cfg.Backend).Msg("revocation list ready")

	return New(storage, cfg.DefaultTTL), nil
}

// NewPostgresStorage opens the revocation table. Expired rows are removed
// every cfg.GCInterval. The driver panics on connect failures, the panic is
// returned as ErrStorageUnavailable.
func NewPostgresStorage(cfg config.Revocation, db config.DB) (storage fiber.Storage, err error) {
	defer func() {
		if r := recover(); r != nil {
			storage = nil
			err = fmt.Errorf("%w: %v", ErrStorageUnavailable, r)
		}
	}()

	return postgres.New(postgres.Config{
		Host:       db.Host,
		Port:       db.Port,
		Username:   db.User,
		Password:   db.Password,
		Database:   db.Name,
		Table:      cfg.Table,
		SSLMode:    cfg.SSLMode,
		GCInterval: cfg.GCInterval,
	}), nil
}
