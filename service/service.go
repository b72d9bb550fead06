package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agentskill/api"
	"agentskill/cache"
	"agentskill/config"
	"agentskill/logger"
	"agentskill/seo"
	"agentskill/web"
)

// Service errors
var (
	ErrServiceInit     = fmt.Errorf("service initialization error")
	ErrServiceShutdown = fmt.Errorf("service shutdown error")
)

const (
	shutdownTimeout    = 10 * time.Second
	cacheSweepInterval = 10 * time.Minute
	readHeaderTimeout  = 10 * time.Second
)

// purger is implemented by stores that keep expired rows until swept.
type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Service represents the main application service
type Service struct {
	config  *config.Config
	store   cache.Store
	tracker *Tracker
	server  *http.Server
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewService loads configuration and wires the cache, the skills API client,
// the visit tracker and the HTTP server.
func NewService() (*Service, error) {
	// Load configuration
	cfg := config.NewConfig()
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("%w: failed to load configuration: %v", ErrServiceInit, err)
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize logger: %v", ErrServiceInit, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Initialize response cache
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	// Initialize skills API client
	client := api.NewClient(cfg.ServerAPIBase())

	s, err := newService(ctx, cancel, cfg, store, api.NewCachedClient(client, store), client)
	if err != nil {
		cancel()
		_ = store.Close()
		return nil, err
	}

	logger.Info("Service initialized successfully",
		zap.String("api_base", client.BaseURL()),
		zap.String("site_origin", cfg.SiteOrigin),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("port", cfg.Port))

	return s, nil
}

func newService(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, store cache.Store, fetcher api.Fetcher, tracker api.Tracker) (*Service, error) {
	visits := NewTracker(tracker, trackerSlots, trackerTimeout)
	handler, err := web.NewServer(web.Options{
		SiteOrigin: cfg.SiteOrigin,
		Verification: seo.Verification{
			Google: cfg.GoogleVerification,
			Bing:   cfg.BingVerification,
			Baidu:  cfg.BaiduVerification,
		},
		UmamiScriptURL: cfg.UmamiScriptURL,
		UmamiWebsiteID: cfg.UmamiWebsiteID,
	}, fetcher, visits)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build handler: %v", ErrServiceInit, err)
	}

	return &Service{
		config:  cfg,
		store:   store,
		tracker: visits,
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// OpenStore opens the response cache selected by CACHE_BACKEND.
func OpenStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case config.CachePostgres:
		store, err := cache.NewPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to initialize cache: %v", ErrServiceInit, err)
		}
		return store, nil
	case config.CacheMemory, "":
		return cache.NewMemory(0), nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", ErrServiceInit, cfg.CacheBackend)
	}
}

// Start serves HTTP until an interrupt or SIGTERM, then shuts down gracefully.
func (s *Service) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("%w: failed to listen on %s: %v", ErrServiceInit, s.server.Addr, err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	return s.serve(ln, sigChan)
}

func (s *Service) serve(ln net.Listener, stop <-chan os.Signal) error {
	if p, ok := s.store.(purger); ok {
		s.startPurging(p, cacheSweepInterval)
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			s.cancel()
			return fmt.Errorf("%w: server stopped: %v", ErrServiceInit, err)
		}
		return nil
	case sig := <-stop:
		logger.Info("Shutdown signal received, initiating graceful shutdown", zap.String("signal", sig.String()))
	case <-s.ctx.Done():
		logger.Info("Service context cancelled, initiating graceful shutdown")
	}
	return s.shutdown()
}

func (s *Service) shutdown() error {
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%w: failed to stop HTTP server: %v", ErrServiceShutdown, err)
	}
	if err := s.tracker.Wait(ctx); err != nil {
		logger.Warn("Visit beacons still in flight at shutdown", zap.Error(err))
	}
	return nil
}

// startPurging sweeps expired cache rows until the service stops.
func (s *Service) startPurging(p purger, interval time.Duration) {
	logger.Info("Starting cache maintenance", zap.Duration("interval", interval))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				removed, err := p.PurgeExpired(s.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						logger.Warn("Error purging expired cache entries", zap.Error(err))
					}
					continue
				}
				logger.Debug("Purged expired cache entries", zap.Int64("removed", removed))
			}
		}
	}()
}

// Close performs cleanup operations
func (s *Service) Close() error {
	logger.Info("Closing service")
	s.cancel()
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("%w: failed to close cache: %v", ErrServiceShutdown, err)
	}
	return nil
}
