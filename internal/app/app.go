package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/adapters/httpserver"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/adapters/payments/tripay"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/adapters/repo/postgres"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/adapters/storage/localfs"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/adapters/storage/rediskv"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/config"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/usecase"
)

type App struct {
	Config   *config.Config
	State    *usecase.State
	Catalog  *usecase.CatalogUC
	Checkout *usecase.CheckoutUC
	Sync     *usecase.SyncUC

	ctx     context.Context
	handler http.Handler
	closers []func() error
}

// Deps lets callers replace the infrastructure pieces NewApp would build.
type Deps struct {
	KV      domain.KVStore
	Dial    domain.RemoteDialer
	Gateway domain.PaymentGateway
}

// NewApp builds the application. ctx bounds background sync work.
func NewApp(ctx context.Context, cfg *config.Config, deps Deps) (*App, error) {
	a := &App{Config: cfg, ctx: ctx}

	kv := deps.KV
	if kv == nil {
		var err error
		if kv, err = a.newKVStore(ctx); err != nil {
			return nil, err
		}
	}
	state, err := usecase.LoadState(ctx, kv, DemoSeed())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}

	dial := deps.Dial
	if dial == nil {
		dial = postgres.Dialer(cfg.RemoteAutoMigrate)
	}
	gateway := deps.Gateway
	if gateway == nil {
		gateway = tripay.NewGateway(cfg.TripayBaseURL, cfg.PublicBaseURL)
	}

	a.State = state
	a.Catalog = &usecase.CatalogUC{State: state}
	a.Checkout = &usecase.CheckoutUC{
		State:   state,
		Gateway: gateway,
		Policy:  usecase.ParseCommissionPolicy(cfg.CommissionPolicy),
		BaseURL: cfg.PublicBaseURL,
	}
	a.Sync = &usecase.SyncUC{State: state, Dial: dial}
	a.handler = httpserver.New(a.Catalog, a.Checkout, a.Sync, httpserver.Options{
		SessionKey:    cfg.SessionKey,
		JWTSecret:     cfg.JWTSecret,
		AdminPassword: cfg.AdminPassword,
		PublicBaseURL: cfg.PublicBaseURL,
		SecureCookies: cfg.IsProduction(),
		BaseContext:   ctx,
	})

	log.Info().Str("backend", cfg.StoreBackend).Str("commission_policy", string(a.Checkout.Policy)).
		Int("products", len(state.Products())).Int("orders", len(state.Orders())).Msg("state loaded")
	return a, nil
}

func (a *App) newKVStore(ctx context.Context) (domain.KVStore, error) {
	switch strings.ToLower(a.Config.StoreBackend) {
	case "redis":
		s := rediskv.New(rediskv.Config{
			Addr:     a.Config.RedisAddr,
			Password: a.Config.RedisPassword,
			DB:       a.Config.RedisDB,
			Prefix:   a.Config.RedisPrefix,
		})
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("redis %s: %w", a.Config.RedisAddr, err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case "", "file":
		return localfs.New(a.Config.StorageDir), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", a.Config.StoreBackend)
	}
}

func (a *App) HTTPHandler() http.Handler { return a.handler }

// Start kicks off the first remote connection in the background. A DSN from
// the config replaces the stored one; otherwise the stored one is used.
func (a *App) Start() error {
	if dsn := strings.TrimSpace(a.Config.RemoteDSN); dsn != "" {
		if _, err := a.Catalog.SetRemoteDSN(a.ctx, dsn); err != nil {
			return err
		}
	}
	dsn := a.Catalog.Settings().RemoteDSN
	if dsn == "" {
		log.Info().Msg("no remote store configured, running on local data")
		return nil
	}
	a.Sync.Start(a.ctx, dsn)
	return nil
}

// ApplyConfig reacts to a reloaded config file. Only the remote DSN is picked
// up live; other keys need a restart.
func (a *App) ApplyConfig(prev, next *config.Config) {
	a.Config = next
	if prev != nil && prev.RemoteDSN == next.RemoteDSN {
		return
	}
	changed, err := a.Catalog.SetRemoteDSN(a.ctx, next.RemoteDSN)
	if err != nil {
		log.Error().Err(err).Msg("store remote dsn from config")
		return
	}
	if changed {
		log.Info().Msg("config changed remote dsn, reconnecting")
		a.Sync.Start(a.ctx, a.Catalog.Settings().RemoteDSN)
	}
}

func (a *App) Close() {
	if a.Sync != nil {
		if _, err := a.Sync.Reconnect(context.Background(), ""); err != nil {
			log.Warn().Err(err).Msg("close remote store")
		}
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}
	a.closers = nil
}
