package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"

	"github.com/gamemod/warden/moderation"
	"github.com/gamemod/warden/moderation/cachestore"
	"github.com/gamemod/warden/moderation/config"
	"github.com/gamemod/warden/moderation/engine"
	"github.com/gamemod/warden/moderation/ledger"
	"github.com/gamemod/warden/moderation/storage"
)

type Server struct {
	echo       *echo.Echo
	logger     *slog.Logger
	engine     *moderation.Engine
	ledger     *moderation.Ledger
	policyPath string
}

type Config struct {
	Logger            *slog.Logger
	DatabaseURL       string
	MaxDBConnections  int
	RedisURL          string
	PolicyPath        string
	ViolationWindowMs int64
}

// LogDispatcher logs resolved commands instead of executing them. The game
// server host polls or tails these; command execution stays on its side.
type LogDispatcher struct {
	logger *slog.Logger
}

func (d *LogDispatcher) Dispatch(command string) {
	d.logger.Info("dispatching moderation command", "command", command)
}

func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	pol := config.Default()
	if cfg.PolicyPath != "" {
		var err error
		pol, err = config.Load(cfg.PolicyPath)
		if err != nil {
			return nil, fmt.Errorf("loading moderation policy: %w", err)
		}
		logger.Info("loaded moderation policy", "path", cfg.PolicyPath)
	}
	if cfg.ViolationWindowMs > 0 {
		pol.ViolationDurationMs = cfg.ViolationWindowMs
	}

	store, err := storage.Open(cfg.DatabaseURL, cfg.MaxDBConnections)
	if err != nil {
		return nil, err
	}
	if err := store.Bootstrap(context.Background()); err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	var cache cachestore.Store
	if cfg.RedisURL != "" {
		cache, err = cachestore.NewRedisCacheStore(cfg.RedisURL, time.Duration(pol.CacheTTLMinutes)*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %w", err)
		}
	} else {
		cache = cachestore.NewMemCacheStore(pol.CacheCapacity, time.Duration(pol.CacheTTLMinutes)*time.Minute)
	}

	led := ledger.New(store, cache, time.Duration(pol.ViolationDurationMs)*time.Millisecond, logger)

	eng, err := engine.New(engine.Config{
		Logger:     logger,
		Policy:     pol,
		Ledger:     led,
		Dispatcher: &LogDispatcher{logger: logger},
	})
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())

	s := &Server{
		echo:       e,
		logger:     logger,
		engine:     eng,
		ledger:     led,
		policyPath: cfg.PolicyPath,
	}

	e.GET("/_health", s.HandleHealthCheck)
	e.POST("/moderate/chat", s.HandleModerateChat)
	e.POST("/moderate/command", s.HandleModerateCommand)
	e.POST("/moderate/text", s.HandleModerateText)
	e.POST("/mention", s.HandleMention)
	e.GET("/violations/:player", s.HandleListViolations)
	e.DELETE("/violations/:player/:id", s.HandleRemoveViolation)
	e.GET("/policy/exemptions", s.HandleExemptions)
	e.POST("/disconnect/:player", s.HandleDisconnect)
	e.POST("/reload", s.HandleReload)

	return s, nil
}

func (s *Server) RunMetrics(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, mux)
}

// Run serves the moderation API until SIGINT or SIGTERM, then drains the
// violation worker before returning.
func (s *Server) Run(bind string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(bind)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Error("http shutdown failed", "err", err)
	}
	if err := s.engine.Shutdown(ctx); err != nil {
		return fmt.Errorf("draining violation worker: %w", err)
	}
	return nil
}
