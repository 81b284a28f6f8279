package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/polinfinity/staking-sync/internal/config"
	"github.com/polinfinity/staking-sync/internal/observability/tracing"
	"github.com/polinfinity/staking-sync/internal/types"
	"github.com/rs/zerolog/log"
)

const (
	requestTimeout = 5 * time.Minute
	idleTimeout    = 60 * time.Second
)

// SyncService is the part of the sync service exposed over HTTP
type SyncService interface {
	Snapshot() *types.Snapshot
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) bool
	Invest(ctx context.Context, amount string) (*types.TxReceipt, error)
	Withdraw(ctx context.Context) (*types.TxReceipt, error)
}

// WalletControl lets API clients act as the wallet: they push account and
// network changes, which reach the service as wallet events.
type WalletControl interface {
	SetAccounts(ctx context.Context, accounts []string) error
	SetChain(ctx context.Context, chainID uint64) error
}

// SnapshotFeed streams published snapshots
type SnapshotFeed interface {
	Subscribe() (<-chan *types.Snapshot, func())
}

type Server struct {
	svc    SyncService
	wallet WalletControl
	feed   SnapshotFeed
	hub    *hub
	http   *http.Server
}

// NewServer builds the API router. wallet may be nil when no wallet bridge is
// configured; wallet routes then answer 503.
func NewServer(cfg *config.ServerConfig, svc SyncService, wallet WalletControl, feed SnapshotFeed) *Server {
	s := &Server{
		svc:    svc,
		wallet: wallet,
		feed:   feed,
		hub:    newHub(),
	}
	s.http = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.Router(),
		ReadTimeout:  requestTimeout,
		WriteTimeout: requestTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(withTraceID)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/ws", s.handleWebsocket)

		r.Post("/session/connect", s.handleConnect)
		r.Post("/session/disconnect", s.handleDisconnect)

		r.Put("/wallet/accounts", s.handleSetAccounts)
		r.Post("/wallet/chain-changed", s.handleChainChanged)

		r.Post("/tx/invest", s.handleInvest)
		r.Post("/tx/withdraw", s.handleWithdraw)
	})
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Ctx(ctx).Info().Msgf("Starting API server on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.InjectTraceID(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
