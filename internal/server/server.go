// Package server exposes the ledger, summaries and ingestion over HTTP for
// the dashboard.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pennywyse/pennywyse/internal/categories"
	"github.com/pennywyse/pennywyse/internal/ledger"
	"github.com/pennywyse/pennywyse/internal/pipeline"
)

// maxBody caps the size of an ingest request body.
const maxBody = 10 << 20

// Server holds the handlers' dependencies.
type Server struct {
	store      *ledger.Store
	pipeline   *pipeline.Pipeline
	categories *categories.Service
	log        zerolog.Logger
}

// New creates a Server.
func New(store *ledger.Store, p *pipeline.Pipeline, cats *categories.Service, log zerolog.Logger) *Server {
	if cats == nil {
		cats = categories.NewService(nil)
	}
	return &Server{store: store, pipeline: p, categories: cats, log: log}
}

// Router builds the gin engine. mode is a gin mode ("release", "debug", "test").
func (s *Server) Router(mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	r := gin.New()
	r.Use(recovery(s.log), requestLogger(s.log), cors())

	r.GET("/healthz", s.healthz)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/transactions", s.listTransactions)
		v1.GET("/summary", s.getSummary)
		v1.GET("/summary/monthly", s.getMonthly)
		v1.GET("/categories", s.listCategories)
		v1.POST("/ingest", s.ingest)
		v1.GET("/export", s.export)
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr, mode string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(mode),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}
