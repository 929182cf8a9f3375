package httpserver

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/adapters/export/xlsx"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

func (s *Server) apiAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if s.opts.AdminPassword == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.opts.AdminPassword)) != 1 {
		writeError(w, domain.ErrUnauthorized, http.StatusUnauthorized)
		return
	}
	tok, exp, err := s.issueToken(roleAdmin, "admin", adminTTL)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	s.setTokenCookie(w, adminCookie, tok, adminTTL)
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "exp": exp.Unix()})
}

func (s *Server) apiAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w, adminCookie)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// decodeRecord reads a record body; on PUT the id from the path wins.
func decodeRecord[T any](r *http.Request, setID func(*T, string)) (T, error) {
	var rec T
	if err := decodeJSON(r, &rec); err != nil {
		return rec, err
	}
	if id := chi.URLParam(r, "id"); id != "" {
		setID(&rec, id)
	}
	return rec, nil
}

func savedStatus(r *http.Request) int {
	if r.Method == http.MethodPost {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (s *Server) adminListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.catalog.ListProducts()})
}

func (s *Server) adminSaveProduct(w http.ResponseWriter, r *http.Request) {
	p, err := decodeRecord(r, func(p *domain.Product, id string) { p.ID = id })
	if err == nil {
		p, err = s.catalog.UpsertProduct(r.Context(), p)
	}
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, savedStatus(r), p)
}

func (s *Server) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminListVouchers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.catalog.ListVouchers()})
}

func (s *Server) adminSaveVoucher(w http.ResponseWriter, r *http.Request) {
	v, err := decodeRecord(r, func(v *domain.Voucher, id string) { v.ID = id })
	if err == nil {
		v, err = s.catalog.UpsertVoucher(r.Context(), v)
	}
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, savedStatus(r), v)
}

func (s *Server) adminDeleteVoucher(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteVoucher(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminListAffiliates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.catalog.ListAffiliates()})
}

func (s *Server) adminSaveAffiliate(w http.ResponseWriter, r *http.Request) {
	a, err := decodeRecord(r, func(a *domain.Affiliate, id string) { a.ID = id })
	if err == nil {
		a, err = s.catalog.UpsertAffiliate(r.Context(), a)
	}
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, savedStatus(r), a)
}

func (s *Server) adminDeleteAffiliate(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteAffiliate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.catalog.ListPaymentMethods(false)})
}

func (s *Server) adminSavePaymentMethod(w http.ResponseWriter, r *http.Request) {
	m, err := decodeRecord(r, func(m *domain.PaymentMethod, id string) { m.ID = id })
	if err == nil {
		m, err = s.catalog.UpsertPaymentMethod(r.Context(), m)
	}
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, savedStatus(r), m)
}

func (s *Server) adminDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeletePaymentMethod(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Settings())
}

func (s *Server) adminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var next domain.StoreSettings
	if err := decodeJSON(r, &next); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	changed, err := s.catalog.UpdateSettings(r.Context(), next)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if changed {
		s.reconnect()
	}
	writeJSON(w, http.StatusOK, s.catalog.Settings())
}

// reconnect starts a fresh sync cycle with the stored credentials.
func (s *Server) reconnect() {
	log.Info().Msg("remote credentials changed, reconnecting")
	s.sync.Start(s.opts.BaseContext, s.catalog.Settings().RemoteDSN)
}

func (s *Server) adminListOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	list := s.checkout.ListOrders()
	if status != "" {
		filtered := list[:0]
		for _, o := range list {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		list = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
}

func (s *Server) adminConfirmOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.checkout.ConfirmPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) adminCancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.checkout.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) adminSyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sync.Status())
}

func (s *Server) adminSyncCredentials(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DSN string `json:"dsn"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	changed, err := s.catalog.SetRemoteDSN(r.Context(), req.DSN)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if changed {
		s.reconnect()
	}
	writeJSON(w, http.StatusAccepted, s.sync.Status())
}

// Sync failures are reported with the remote's own error text.
func (s *Server) adminSyncPull(w http.ResponseWriter, r *http.Request) {
	rep, err := s.sync.Pull(r.Context())
	if err != nil {
		writeJSON(w, syncStatusCode(err), map[string]any{"status": "error", "message": err.Error(), "report": rep})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) adminSyncPush(w http.ResponseWriter, r *http.Request) {
	rep, err := s.sync.Push(r.Context())
	if err != nil {
		writeJSON(w, syncStatusCode(err), map[string]any{"status": "error", "message": err.Error(), "report": rep})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func syncStatusCode(err error) int {
	if errors.Is(err, domain.ErrNotConnected) || errors.Is(err, domain.ErrStaleEpoch) {
		return http.StatusConflict
	}
	return http.StatusBadGateway
}

func (s *Server) adminExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=digistore-"+time.Now().Format("20060102")+".xlsx")
	if err := xlsx.WriteReport(w, s.checkout.ListOrders(), s.catalog.ListAffiliates()); err != nil {
		log.Error().Err(err).Msg("xlsx export")
	}
}
