package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
	"github.com/acsaicontentstudio-collab/digistore-app/internal/usecase"
)

type productView struct {
	domain.Product
	Slug           string `json:"slug"`
	EffectivePrice int64  `json:"effectivePrice"`
}

// Storefront responses never carry the download link; it is delivered with
// the order once paid.
func publicProduct(p domain.Product) productView {
	p.FileURL = ""
	return productView{Product: p, Slug: p.Slug(), EffectivePrice: p.EffectivePrice()}
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	popular := r.URL.Query().Get("popular") == "1"
	list := s.catalog.ListProducts()
	out := make([]productView, 0, len(list))
	for _, p := range list {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if popular && !p.IsPopular {
			continue
		}
		out = append(out, publicProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
}

func (s *Server) apiProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetProduct(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, publicProduct(*p))
}

func (s *Server) apiPaymentMethods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.catalog.ListPaymentMethods(true)})
}

func (s *Server) apiPublicSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Settings().Public())
}

type cartView struct {
	Items        []cartItemView `json:"items"`
	Count        int            `json:"count"`
	VoucherCode  string         `json:"voucherCode,omitempty"`
	ReferralCode string         `json:"referralCode,omitempty"`
	Quote        usecase.Quote  `json:"quote"`
}

type cartItemView struct {
	Product   productView `json:"product"`
	Quantity  int         `json:"quantity"`
	LineTotal int64       `json:"lineTotal"`
}

func (s *Server) renderCart(w http.ResponseWriter, r *http.Request, cp cartPayload, c domain.Cart) {
	s.writeCart(w, toPayload(cp.Session, cp.Voucher, c))
	view := cartView{
		Items:        make([]cartItemView, 0, len(c.Items)),
		Count:        c.Count(),
		VoucherCode:  cp.Voucher,
		ReferralCode: referralFrom(r),
		Quote:        usecase.ComputeCheckout(c.Items, cp.Voucher, s.checkout.State.Vouchers()),
	}
	for _, it := range c.Items {
		view.Items = append(view.Items, cartItemView{Product: publicProduct(it.Product), Quantity: it.Quantity, LineTotal: it.LineTotal()})
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) apiCart(w http.ResponseWriter, r *http.Request) {
	cp := s.readCart(r)
	s.renderCart(w, r, cp, s.cart(cp))
}

func (s *Server) apiCartClear(w http.ResponseWriter, r *http.Request) {
	cp := s.readCart(r)
	cp.Voucher = ""
	s.renderCart(w, r, cp, domain.Cart{})
}

func (s *Server) apiCartAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeError(w, domain.Invalid("quantity", "must be positive"), http.StatusBadRequest)
		return
	}
	p, err := s.catalog.GetProduct(req.ProductID)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	cp := s.readCart(r)
	c := s.cart(cp)
	if err := c.Add(*p, req.Quantity); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	s.renderCart(w, r, cp, c)
}

func (s *Server) apiCartUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	cp := s.readCart(r)
	c := s.cart(cp)
	if err := c.SetQuantity(chi.URLParam(r, "productID"), req.Quantity); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	s.renderCart(w, r, cp, c)
}

func (s *Server) apiCartRemove(w http.ResponseWriter, r *http.Request) {
	cp := s.readCart(r)
	c := s.cart(cp)
	c.Remove(chi.URLParam(r, "productID"))
	s.renderCart(w, r, cp, c)
}

// apiCartVoucher applies a voucher code to the cart. An unknown code is kept
// off the cart and reported through quote.voucherInvalid, not as an error.
func (s *Server) apiCartVoucher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	cp := s.readCart(r)
	c := s.cart(cp)
	code := domain.CanonicalCode(req.Code)
	if code == "" {
		cp.Voucher = ""
		s.renderCart(w, r, cp, c)
		return
	}
	q := usecase.ComputeCheckout(c.Items, code, s.checkout.State.Vouchers())
	if !q.VoucherInvalid {
		cp.Voucher = code
	}
	s.writeCart(w, toPayload(cp.Session, cp.Voucher, c))
	writeJSON(w, http.StatusOK, map[string]any{"voucherCode": cp.Voucher, "quote": q, "voucherInvalid": q.VoucherInvalid})
}

func (s *Server) apiCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerName    string `json:"customerName"`
		CustomerContact string `json:"customerContact"`
		PaymentMethodID string `json:"paymentMethodId"`
		VoucherCode     string `json:"voucherCode"`
		ReferralCode    string `json:"referralCode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	cp := s.readCart(r)
	c := s.cart(cp)
	voucher := req.VoucherCode
	if voucher == "" {
		voucher = cp.Voucher
	}
	referral := req.ReferralCode
	if referral == "" {
		referral = referralFrom(r)
	}
	res, err := s.checkout.Submit(r.Context(), usecase.CheckoutRequest{
		SubmissionKey:   cp.Session,
		Items:           c.Items,
		VoucherCode:     voucher,
		ReferralCode:    referral,
		PaymentMethodID: req.PaymentMethodID,
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
	})
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	s.writeCart(w, cartPayload{Session: domain.NewID()})
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusCreated, res)
}

type orderStatusView struct {
	ID                string             `json:"id"`
	Status            domain.OrderStatus `json:"status"`
	Total             int64              `json:"total"`
	PaymentMethodName string             `json:"paymentMethodName"`
	Items             []domain.OrderItem `json:"items"`
}

// orderStatus hides download links until the order is paid.
func orderStatus(o domain.Order) orderStatusView {
	items := make([]domain.OrderItem, len(o.Items))
	copy(items, o.Items)
	if o.Status != domain.OrderStatusPaid {
		for i := range items {
			items[i].FileURL = ""
		}
	}
	return orderStatusView{ID: o.ID, Status: o.Status, Total: o.Total, PaymentMethodName: o.PaymentMethodName, Items: items}
}

func (s *Server) apiOrderStatus(w http.ResponseWriter, r *http.Request) {
	o, err := s.checkout.GetOrder(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, orderStatus(*o))
}

// handlePay is the local payment page used when the gateway cannot be reached.
func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	o, err := s.checkout.GetOrder(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	settings := s.catalog.Settings()
	msg := usecase.OrderMessage(*o, settings)
	writeJSON(w, http.StatusOK, map[string]any{
		"order":        orderStatus(*o),
		"totalLabel":   usecase.FormatIDR(o.Total),
		"whatsappLink": usecase.WhatsAppLink(settings.WhatsApp, msg),
	})
}
