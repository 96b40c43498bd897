// Package web provides the HTTP service of the admin API.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/zymptek/zymptek-api/internal/config"
	accesslog "github.com/zymptek/zymptek-api/internal/logger/adapter/fiber"
	"github.com/zymptek/zymptek-api/internal/web/handler"
	"github.com/zymptek/zymptek-api/internal/web/handler/admin"
	"github.com/zymptek/zymptek-api/internal/web/handler/adminauth"
	"github.com/zymptek/zymptek-api/internal/web/handler/health"
	authmw "github.com/zymptek/zymptek-api/internal/web/middleware/auth"
)

const (
	// MetricsPath serves the prometheus metrics, outside of the API prefix.
	MetricsPath = "/metrics"

	corsMethods = "GET,POST,PUT,DELETE,PATCH"
	corsHeaders = "Content-Type,Authorization"
)

// ErrNilConfig is returned by New without a config.
var ErrNilConfig = errors.New("config cannot be nil")

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// Alive reports false once a graceful shutdown has begun.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// WaitShutdown blocks until SIGINT or SIGTERM and stops the service gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown fails the health route for the configured grace period, then stops the server.
func (s *Service) Shutdown() {
	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service and registers every route.
// deps.Alive is set by New.
func New(cfg *config.Config, deps handler.Deps) (*Service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			JSONEncoder:    json.Marshal,
			JSONDecoder:    json.Unmarshal,
			ErrorHandler:   ErrorHandler,
		},
	)

	service := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	deps.Alive = service.Alive

	prefix := "/" + cfg.Webserver.APIPrefix

	// access log first, it renders chain errors including recovered panics
	app.Use(accesslog.New(accesslog.Config{
		Config:          cfg.Log,
		CheckAlivePaths: []string{prefix + "/" + health.Path},
		PrincipalLocal:  authmw.LocalPrincipal,
	}))

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	if cfg.Webserver.HelmetEnabled {
		app.Use(helmet.New())
	}

	if cfg.Webserver.CompressionEnabled {
		app.Use(compress.New())
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(config.CORSOrigins(cfg.Webserver.CORSOrigins), ","),
		AllowMethods: corsMethods,
		AllowHeaders: corsHeaders,
	}))

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group(prefix)

	for _, h := range []handler.Service{&health.Service{}, &adminauth.Service{}, &admin.Service{}} {
		if err := h.Init(api, cfg, deps); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	return service, nil
}
