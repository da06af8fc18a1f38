package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docdetect/internal/config"
	"docdetect/internal/logger"
	"docdetect/internal/model"
	"docdetect/internal/route"
	"docdetect/internal/service"
	"docdetect/internal/service/ai"
	"docdetect/internal/service/document"
	"docdetect/internal/service/result"
	"docdetect/internal/service/websocket"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	detectors  *ai.Pool
	hubService *websocket.HubService
	manager    *service.Manager
}

// NewApp loads config and the model. A model that cannot be loaded is an
// error: the service never starts degraded.
func NewApp() (*App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	detectors, err := ai.NewPool(cfg, log)
	if err != nil {
		log.Error("Failed to load model %s: %v", cfg.ModelPath, err)
		log.Close()
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	var hub *websocket.HubService
	if cfg.LiveFeed {
		hub = websocket.NewHubService(log)
	}

	mng := service.NewManager(cfg,
		document.NewNormalizer(cfg, log),
		detectors,
		result.NewMapper(model.DefaultClassTable()),
		hub,
		log,
	)

	return &App{
		config:     cfg,
		logger:     log,
		detectors:  detectors,
		hubService: hub,
		manager:    mng,
	}, nil
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	defer a.logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start background services
	if a.hubService != nil {
		go a.hubService.Run(ctx)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           route.SetupRoutes(a.manager, a.config, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("Document detection service listening on :%d", a.config.Port)
	a.logger.Info("Model: %s (%s), threshold %.2f, workers %d",
		a.config.ModelPath, a.manager.ModelType(), a.config.ConfidenceThreshold, a.config.DetectorWorkers)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		a.detectors.Close()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		// A request may still be inside Forward; the process exit frees the networks.
		a.logger.Warning("Shutdown incomplete, leaving detector networks open: %v", err)
		return err
	}
	return a.detectors.Close()
}
