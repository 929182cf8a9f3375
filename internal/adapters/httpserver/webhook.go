package httpserver

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/adapters/payments/tripay"
)

// webhookTripay confirms orders the gateway reports as paid. Callbacks whose
// signature does not match the stored private key are rejected, and a paid
// amount that differs from the order total leaves the order pending.
func (s *Server) webhookTripay(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "body")
		return
	}
	key := s.catalog.Settings().TripayPrivateKey
	cb, err := tripay.VerifyCallback(key, r.Header.Get("X-Callback-Signature"), body)
	if err != nil {
		log.Warn().Err(err).Msg("tripay callback rejected")
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": err.Error()})
		return
	}
	if !cb.Paid() {
		log.Info().Str("reference", cb.Reference).Str("status", cb.Status).Msg("tripay callback ignored")
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	o, err := s.checkout.FindOrderByReference(cb.MerchantRef)
	if err != nil {
		o, err = s.checkout.FindOrderByReference(cb.Reference)
	}
	if err != nil {
		log.Warn().Str("merchant_ref", cb.MerchantRef).Str("reference", cb.Reference).Msg("tripay callback for unknown order")
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "order not found"})
		return
	}
	if o.Total != cb.TotalAmount {
		log.Warn().Str("order_id", o.ID).Int64("total", o.Total).Int64("paid", cb.TotalAmount).Msg("tripay amount differs from order total")
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "amount mismatch"})
		return
	}
	if _, err := s.checkout.ConfirmPayment(r.Context(), o.ID); err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Msg("confirm from callback")
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": err.Error()})
		return
	}
	log.Info().Str("order_id", o.ID).Str("reference", cb.Reference).Msg("order paid via gateway")
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
