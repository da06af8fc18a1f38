package route

import (
	"net/http"

	"docdetect/internal/config"
	"docdetect/internal/handler"
	"docdetect/internal/logger"
	"docdetect/internal/middleware"
	"docdetect/internal/service"
)

// SetupRoutes registers the API endpoints and wraps the mux in the middleware chain.
func SetupRoutes(manager *service.Manager, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/predict", handler.PredictHandler(manager, cfg, logger))
	mux.HandleFunc("/health", handler.HealthHandler(manager))
	mux.HandleFunc("/model-info", handler.ModelInfoHandler(manager, logger))

	// Live feed of prediction summaries
	if cfg.LiveFeed {
		mux.HandleFunc("/ws/predictions", handler.ViewWebsocketHandler(manager, logger))
	}

	// Apply middleware
	return withMiddleware(mux, logger)
}

// withMiddleware wraps h, outermost first: request id, access log, panic
// recovery, CORS. Recovery sits inside the access log so a recovered panic is
// still logged with its 500.
func withMiddleware(h http.Handler, logger *logger.Logger) http.Handler {
	h = middleware.CORS(h)
	h = middleware.Recover(logger)(h)
	h = middleware.AccessLog(logger)(h)
	return middleware.RequestID(h)
}
