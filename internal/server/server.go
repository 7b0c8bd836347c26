package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Jimmy200504/CalH2O/internal/config"
	"github.com/Jimmy200504/CalH2O/internal/database"
	"github.com/Jimmy200504/CalH2O/internal/pipeline"
)

// Pipelines are the capabilities served over HTTP and websocket.
type Pipelines struct {
	DailyNeeds         *pipeline.DailyNeeds
	EmotionalBlackmail *pipeline.EmotionalBlackmail
	FoodPhoto          *pipeline.FoodPhoto
	TextToNutrition    *pipeline.TextToNutrition
}

type Server struct {
	cfg       config.ServerConfig
	store     database.DocumentStore
	pipelines Pipelines
	log       zerolog.Logger
	clients   sync.Map // client id -> *websocket.Conn

	echo *echo.Echo
}

func New(cfg config.ServerConfig, store database.DocumentStore, pipelines Pipelines, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		store:     store,
		pipelines: pipelines,
		log:       logger,
	}
	s.echo = s.RegisterRoutes()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("port", s.cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	s.clients.Range(func(_, v any) bool {
		v.(*websocket.Conn).Close()
		return true
	})
	return srv.Shutdown(shutdownCtx)
}
