package httpapi

import (
	"net/http"

	"github.com/septivank/energy-metering-api/internal/apperrors"
	"github.com/septivank/energy-metering-api/internal/logging"
	"go.uber.org/zap"
)

// Router dispatches API requests through the middleware chain.
type Router struct {
	handler http.Handler
}

// NewRouter builds the routing table and wraps it with request-id,
// access-log and panic-recovery middleware.
func NewRouter(handlers *Handlers, logger *zap.Logger) *Router {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("POST /login", wrap(handlers.Login, logger))
	mux.HandleFunc("POST /logout", wrap(handlers.Logout, logger))
	mux.HandleFunc("GET /limits", wrap(handlers.Limits, logger))
	mux.HandleFunc("GET /data", wrap(handlers.Data, logger))

	chain := recoverMiddleware(logger, mux)
	chain = accessLogMiddleware(logger, chain)
	chain = requestIDMiddleware(chain)

	return &Router{handler: chain}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}

// wrap converts an error-returning handler into an http.HandlerFunc.
// Validation and auth failures map to their status codes; everything else
// is logged and flattened to an opaque 500.
func wrap(h func(http.ResponseWriter, *http.Request) error, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		if !apperrors.IsValidation(err) && !apperrors.IsUnauthorized(err) {
			logging.WithRequestID(logger, RequestID(r.Context())).Error("request failed",
				zap.Error(err),
				zap.String("path", r.URL.Path),
			)
		}
		apperrors.WriteError(w, err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
