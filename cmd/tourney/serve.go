package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"holdem-tourney/internal/config"
	"holdem-tourney/internal/gateway"
	"holdem-tourney/internal/history"
	"holdem-tourney/table"
)

type server struct {
	gw       *gateway.Gateway
	history  history.Service
	recorder *history.Recorder
	http     *http.Server
	log      zerolog.Logger
}

func startServer(ctx context.Context, cfg config.Config, log zerolog.Logger) (*server, error) {
	svc, err := history.NewService(ctx, cfg.HistoryOptions())
	if err != nil {
		return nil, err
	}

	s := &server{
		gw:       gateway.New(log),
		history:  svc,
		recorder: history.NewRecorder(svc, log),
		log:      log.With().Str("component", "server").Logger(),
	}
	api := history.NewHTTPHandler(svc, log)
	s.http = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.gw.Routes(func(r chi.Router) { api.RegisterRoutes(r) }),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server stopped")
		}
	}()
	s.log.Info().Str("addr", cfg.ListenAddr).Str("ledger", cfg.LedgerMode).Msg("serving spectators")
	return s, nil
}

func (s *server) observers() []table.Option {
	return []table.Option{
		table.WithObserver(s.recorder),
		table.WithObserver(s.gw),
	}
}

func (s *server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Warn().Err(err).Msg("http shutdown")
	}
	s.gw.Close()
	if err := s.history.Close(); err != nil {
		s.log.Warn().Err(err).Msg("close history")
	}
}
