package httpserver

import (
	"net/http"
	"strings"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

type affiliateView struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	CommissionRate float64 `json:"commissionRate"`
	TotalEarnings  int64   `json:"totalEarnings"`
	BankDetails    string  `json:"bankDetails"`
	IsActive       bool    `json:"isActive"`
	ReferralLink   string  `json:"referralLink"`
}

func (s *Server) affiliateView(a domain.Affiliate) affiliateView {
	return affiliateView{
		ID:             a.ID,
		Name:           a.Name,
		Code:           a.Code,
		CommissionRate: a.CommissionRate,
		TotalEarnings:  a.TotalEarnings,
		BankDetails:    a.BankDetails,
		IsActive:       a.IsActive,
		ReferralLink:   strings.TrimRight(s.opts.PublicBaseURL, "/") + "/?ref=" + a.Code,
	}
}

func (s *Server) apiAffiliateLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	a, err := s.catalog.AffiliateLogin(req.Code, req.Password)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	tok, exp, err := s.issueToken(roleAffiliate, a.ID, affiliateTTL)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	s.setTokenCookie(w, affiliateCookie, tok, affiliateTTL)
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "exp": exp.Unix(), "affiliate": s.affiliateView(*a)})
}

func (s *Server) apiAffiliateLogout(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w, affiliateCookie)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type referralStats struct {
	Orders            int   `json:"orders"`
	PaidOrders        int   `json:"paidOrders"`
	PendingCommission int64 `json:"pendingCommission"`
}

func (s *Server) apiAffiliateMe(w http.ResponseWriter, r *http.Request) {
	id, _ := r.Context().Value(affiliateKey{}).(string)
	a, err := s.catalog.GetAffiliate(id)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	var stats referralStats
	for _, o := range s.checkout.ListOrders() {
		if o.AffiliateID != a.ID {
			continue
		}
		stats.Orders++
		if o.Status == domain.OrderStatusPaid {
			stats.PaidOrders++
		}
		if !o.CommissionCredited && o.Status == domain.OrderStatusPending {
			stats.PendingCommission += o.Commission
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"affiliate": s.affiliateView(*a), "referrals": stats})
}
