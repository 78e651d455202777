package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avetisov/credkeeper/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// HTTPServer serves the REST API and shuts down gracefully when the run
// context is cancelled.
type HTTPServer struct {
	address string
	handler *Handler
	logger  logging.Logger
}

func NewHTTPServer(address string, handler *Handler, logger logging.Logger) *HTTPServer {
	return &HTTPServer{
		address: address,
		handler: handler,
		logger:  logger.With("module", "http_server"),
	}
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.handler.InitRoutes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
