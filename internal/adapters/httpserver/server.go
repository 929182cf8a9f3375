package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/usecase"
)

type Options struct {
	SessionKey    string
	JWTSecret     string
	AdminPassword string
	PublicBaseURL string
	SecureCookies bool
	// BaseContext scopes background work started by requests, such as a
	// reconnect after the remote credentials change.
	BaseContext context.Context
}

type Server struct {
	router   *chi.Mux
	catalog  *usecase.CatalogUC
	checkout *usecase.CheckoutUC
	sync     *usecase.SyncUC
	opts     Options

	sessionKey []byte
	jwtSecret  []byte
}

func New(catalog *usecase.CatalogUC, checkout *usecase.CheckoutUC, sync *usecase.SyncUC, opts Options) *Server {
	if opts.SessionKey == "" {
		opts.SessionKey = "dev-insecure"
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = opts.SessionKey
	}
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}
	s := &Server{
		router:     chi.NewRouter(),
		catalog:    catalog,
		checkout:   checkout,
		sync:       sync,
		opts:       opts,
		sessionKey: []byte(opts.SessionKey),
		jwtSecret:  []byte(opts.JWTSecret),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.captureReferral)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sync": s.sync.Status().Status})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.apiProducts)
		r.Get("/products/{key}", s.apiProduct)
		r.Get("/payment-methods", s.apiPaymentMethods)
		r.Get("/settings", s.apiPublicSettings)

		r.Get("/cart", s.apiCart)
		r.Delete("/cart", s.apiCartClear)
		r.Post("/cart/items", s.apiCartAdd)
		r.Put("/cart/items/{productID}", s.apiCartUpdate)
		r.Delete("/cart/items/{productID}", s.apiCartRemove)
		r.Post("/cart/voucher", s.apiCartVoucher)
		r.Post("/checkout", s.apiCheckout)
		r.Get("/orders/{id}", s.apiOrderStatus)

		r.Route("/affiliate", func(r chi.Router) {
			r.Post("/login", s.apiAffiliateLogin)
			r.Post("/logout", s.apiAffiliateLogout)
			r.With(s.requireAffiliate).Get("/me", s.apiAffiliateMe)
		})
	})

	r.Get("/pay/{id}", s.handlePay)
	r.Post("/webhooks/tripay", s.webhookTripay)

	r.Route("/admin/api", func(r chi.Router) {
		r.Post("/login", s.apiAdminLogin)
		r.Post("/logout", s.apiAdminLogout)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Get("/products", s.adminListProducts)
			r.Post("/products", s.adminSaveProduct)
			r.Put("/products/{id}", s.adminSaveProduct)
			r.Delete("/products/{id}", s.adminDeleteProduct)

			r.Get("/vouchers", s.adminListVouchers)
			r.Post("/vouchers", s.adminSaveVoucher)
			r.Put("/vouchers/{id}", s.adminSaveVoucher)
			r.Delete("/vouchers/{id}", s.adminDeleteVoucher)

			r.Get("/affiliates", s.adminListAffiliates)
			r.Post("/affiliates", s.adminSaveAffiliate)
			r.Put("/affiliates/{id}", s.adminSaveAffiliate)
			r.Delete("/affiliates/{id}", s.adminDeleteAffiliate)

			r.Get("/payment-methods", s.adminListPaymentMethods)
			r.Post("/payment-methods", s.adminSavePaymentMethod)
			r.Put("/payment-methods/{id}", s.adminSavePaymentMethod)
			r.Delete("/payment-methods/{id}", s.adminDeletePaymentMethod)

			r.Get("/settings", s.adminGetSettings)
			r.Put("/settings", s.adminUpdateSettings)

			r.Get("/orders", s.adminListOrders)
			r.Post("/orders/{id}/confirm", s.adminConfirmOrder)
			r.Post("/orders/{id}/cancel", s.adminCancelOrder)

			r.Get("/sync", s.adminSyncStatus)
			r.Put("/sync/credentials", s.adminSyncCredentials)
			r.Post("/sync/pull", s.adminSyncPull)
			r.Post("/sync/push", s.adminSyncPush)

			r.Get("/export.xlsx", s.adminExport)
		})
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("req_id", middleware.GetReqID(r.Context())).
			Msg("http")
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"status": "error", "message": msg})
}

// writeError maps domain errors to a status code. Anything unrecognised gets
// fallback, with the raw error text as message.
func writeError(w http.ResponseWriter, err error, fallback int) {
	code := fallback
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrEmptyCart):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, domain.ErrOrderState), errors.Is(err, domain.ErrNotConnected), errors.Is(err, domain.ErrStaleEpoch):
		code = http.StatusConflict
	}
	if code >= 500 {
		log.Error().Err(err).Int("status", code).Msg("request failed")
	}
	writeMessage(w, code, err.Error())
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("body", "invalid json")
	}
	return nil
}
