package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

type CommissionPolicy string

const (
	// CommissionOnCheckout credits the affiliate when the order is submitted,
	// before any payment is confirmed.
	CommissionOnCheckout CommissionPolicy = "checkout"
	// CommissionOnConfirmed credits the affiliate when the order is marked paid.
	CommissionOnConfirmed CommissionPolicy = "confirmed"
)

func ParseCommissionPolicy(s string) CommissionPolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(CommissionOnConfirmed)) {
		return CommissionOnConfirmed
	}
	return CommissionOnCheckout
}

type HandoffKind string

const (
	HandoffMessage  HandoffKind = "message"
	HandoffRedirect HandoffKind = "redirect"
)

type Handoff struct {
	Kind    HandoffKind `json:"kind"`
	URL     string      `json:"url"`
	Message string      `json:"message,omitempty"`
}

type CheckoutRequest struct {
	// SubmissionKey identifies the submitting session; concurrent submissions
	// with the same key share a single execution.
	SubmissionKey   string
	Items           []domain.CartItem
	VoucherCode     string
	ReferralCode    string
	PaymentMethodID string
	CustomerName    string
	CustomerContact string
}

type CheckoutResult struct {
	Order         domain.Order `json:"order"`
	Quote         Quote        `json:"quote"`
	Commission    int64        `json:"commission"`
	AffiliateName string       `json:"affiliateName,omitempty"`
	Handoff       Handoff      `json:"handoff"`
}

type CheckoutUC struct {
	State   *State
	Gateway domain.PaymentGateway
	Policy  CommissionPolicy
	BaseURL string
	Now     func() time.Time

	flight singleflight.Group
}

func (uc *CheckoutUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

// Quote prices the cart against the live catalog without side effects.
func (uc *CheckoutUC) Quote(items []domain.CartItem, voucherCode string) (Quote, error) {
	lines, err := uc.resolve(items)
	if err != nil {
		return Quote{}, err
	}
	return ComputeCheckout(lines, voucherCode, uc.State.Vouchers()), nil
}

func (uc *CheckoutUC) Submit(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if req.SubmissionKey == "" {
		return uc.submit(ctx, req)
	}
	v, err, shared := uc.flight.Do(req.SubmissionKey, func() (any, error) {
		return uc.submit(ctx, req)
	})
	if shared {
		log.Info().Str("key", req.SubmissionKey).Msg("duplicate checkout submission joined in-flight call")
	}
	if err != nil {
		return nil, err
	}
	return v.(*CheckoutResult), nil
}

func (uc *CheckoutUC) submit(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	method, err := uc.paymentMethod(req.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	lines, err := uc.resolve(req.Items)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	// Priced once; the referral step below reuses this subtotal.
	quote := ComputeCheckout(lines, req.VoucherCode, uc.State.Vouchers())

	now := uc.now().UTC()
	order := domain.Order{
		ID:                domain.NewID(),
		Status:            domain.OrderStatusPending,
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerContact:   strings.TrimSpace(req.CustomerContact),
		Subtotal:          quote.Subtotal,
		DiscountAmount:    quote.Discount,
		Total:             quote.Total,
		PaymentMethodID:   method.ID,
		PaymentMethodName: method.Name,
		ReferralCode:      domain.CanonicalCode(req.ReferralCode),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if quote.Voucher != nil {
		order.VoucherCode = domain.CanonicalCode(quote.Voucher.Code)
	}
	for _, l := range lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: l.Product.ID,
			Title:     l.Product.Name,
			Qty:       l.Quantity,
			UnitPrice: l.Product.EffectivePrice(),
			LineTotal: l.LineTotal(),
			FileURL:   l.Product.FileURL,
		})
	}

	res := &CheckoutResult{Quote: quote}
	err = uc.State.Update(ctx, func(tx *Tx) error {
		ref := ApplyReferral(quote.Subtotal, order.ReferralCode, tx.Affiliates())
		if ref.Applied {
			order.AffiliateID = ref.AffiliateID
			order.Commission = ref.Commission
			res.Commission = ref.Commission
			res.AffiliateName = ref.AffiliateName
			if uc.Policy != CommissionOnConfirmed {
				tx.SetAffiliates(ref.Affiliates)
				order.CommissionCredited = true
			}
		}
		tx.SetOrders(append([]domain.Order{order}, tx.Orders()...))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	log.Info().Str("order_id", order.ID).Int64("total", order.Total).Str("referral", order.ReferralCode).
		Int64("commission", order.Commission).Bool("credited", order.CommissionCredited).Msg("checkout submitted")

	res.Handoff = uc.handoff(ctx, &order, method)
	res.Order = order
	return res, nil
}

func (uc *CheckoutUC) handoff(ctx context.Context, o *domain.Order, method domain.PaymentMethod) Handoff {
	settings := uc.State.Settings()
	if !method.Automated() {
		msg := OrderMessage(*o, settings)
		return Handoff{Kind: HandoffMessage, URL: WhatsAppLink(settings.WhatsApp, msg), Message: msg}
	}
	fallback := Handoff{Kind: HandoffRedirect, URL: strings.TrimRight(uc.BaseURL, "/") + "/pay/" + o.ID}
	if uc.Gateway == nil {
		return fallback
	}
	redir, err := uc.Gateway.CreateTransaction(ctx, o, method, settings)
	if err != nil {
		log.Warn().Err(err).Str("order_id", o.ID).Msg("payment gateway unavailable, using local payment page")
		return fallback
	}
	o.PaymentReference = redir.Reference
	err = uc.State.Update(ctx, func(tx *Tx) error {
		orders := tx.Orders()
		for i := range orders {
			if orders[i].ID == o.ID {
				orders[i].PaymentReference = redir.Reference
				tx.SetOrders(orders)
				return nil
			}
		}
		return domain.ErrNotFound
	})
	if err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Msg("save payment reference")
	}
	return Handoff{Kind: HandoffRedirect, URL: redir.URL}
}

func (uc *CheckoutUC) paymentMethod(id string) (domain.PaymentMethod, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.PaymentMethod{}, domain.Invalid("paymentMethodId", "required")
	}
	for _, m := range uc.State.PaymentMethods() {
		if m.ID == id {
			if !m.IsActive {
				break
			}
			return m, nil
		}
	}
	return domain.PaymentMethod{}, domain.Invalid("paymentMethodId", "unknown or inactive payment method")
}

// resolve re-reads every cart line from the catalog so the order snapshots current data.
func (uc *CheckoutUC) resolve(items []domain.CartItem) ([]domain.CartItem, error) {
	catalog := uc.State.Products()
	byID := make(map[string]domain.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	lines := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if err := domain.CheckQuantity(it.Quantity); err != nil {
			return nil, err
		}
		p, ok := byID[it.Product.ID]
		if !ok {
			return nil, domain.Invalid("items", fmt.Sprintf("product %s is no longer available", it.Product.ID))
		}
		lines = append(lines, domain.CartItem{Product: p, Quantity: it.Quantity})
	}
	if _, err := Subtotal(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (uc *CheckoutUC) ListOrders() []domain.Order {
	return uc.State.Orders()
}

func (uc *CheckoutUC) GetOrder(id string) (*domain.Order, error) {
	for _, o := range uc.State.Orders() {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ConfirmPayment marks a pending order paid. Under CommissionOnConfirmed it credits
// the referral commission, at most once per order. Confirming a paid order is a no-op.
func (uc *CheckoutUC) ConfirmPayment(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	err := uc.State.Update(ctx, func(tx *Tx) error {
		orders := tx.Orders()
		i := indexOrder(orders, id)
		if i < 0 {
			return domain.ErrNotFound
		}
		o := &orders[i]
		switch o.Status {
		case domain.OrderStatusPaid:
			out = *o
			return nil
		case domain.OrderStatusPending:
		default:
			return domain.ErrOrderState
		}
		o.Status = domain.OrderStatusPaid
		o.UpdatedAt = uc.now().UTC()
		if o.AffiliateID != "" && !o.CommissionCredited && o.Commission > 0 {
			next, ok := CreditAffiliate(tx.Affiliates(), o.AffiliateID, o.Commission)
			if ok {
				tx.SetAffiliates(next)
				o.CommissionCredited = true
			} else {
				log.Warn().Str("order_id", o.ID).Str("affiliate_id", o.AffiliateID).Msg("affiliate gone, commission not credited")
			}
		}
		out = *o
		tx.SetOrders(orders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel marks a pending order cancelled. Credited commission is not reversed.
func (uc *CheckoutUC) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	err := uc.State.Update(ctx, func(tx *Tx) error {
		orders := tx.Orders()
		i := indexOrder(orders, id)
		if i < 0 {
			return domain.ErrNotFound
		}
		if orders[i].Status != domain.OrderStatusPending {
			return domain.ErrOrderState
		}
		orders[i].Status = domain.OrderStatusCancelled
		orders[i].UpdatedAt = uc.now().UTC()
		out = orders[i]
		tx.SetOrders(orders)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindOrderByReference looks an order up by its gateway reference or id.
func (uc *CheckoutUC) FindOrderByReference(ref string) (*domain.Order, error) {
	if ref == "" {
		return nil, errors.New("empty reference")
	}
	for _, o := range uc.State.Orders() {
		if o.PaymentReference == ref || o.ID == ref {
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func indexOrder(orders []domain.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}
