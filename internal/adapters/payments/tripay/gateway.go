package tripay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

const (
	SandboxURL    = "https://tripay.co.id/api-sandbox"
	ProductionURL = "https://tripay.co.id/api"

	defaultChannel = "QRIS"
	expiry         = 24 * time.Hour
)

// Gateway creates closed-payment transactions. Credentials are read from the
// store settings on every call, so edits made in the admin apply immediately.
type Gateway struct {
	baseURL   string
	publicURL string
	timeout   time.Duration
	now       func() time.Time
}

func NewGateway(baseURL, publicURL string) *Gateway {
	if baseURL == "" {
		baseURL = SandboxURL
	}
	if publicURL == "" {
		publicURL = "http://localhost:8080"
	}
	return &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
		timeout:   10 * time.Second,
		now:       time.Now,
	}
}

type orderItem struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type createReq struct {
	Method        string      `json:"method"`
	MerchantRef   string      `json:"merchant_ref"`
	Amount        int64       `json:"amount"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	CustomerPhone string      `json:"customer_phone"`
	OrderItems    []orderItem `json:"order_items"`
	CallbackURL   string      `json:"callback_url"`
	ReturnURL     string      `json:"return_url"`
	ExpiredTime   int64       `json:"expired_time"`
	Signature     string      `json:"signature"`
}

type createResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Reference   string `json:"reference"`
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

func sign(key string, parts ...string) string {
	h := hmac.New(sha256.New, []byte(key))
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Signature is the transaction signature: HMAC-SHA256 of merchant code,
// merchant ref and amount keyed with the private key.
func Signature(privateKey, merchantCode, merchantRef string, amount int64) string {
	return sign(privateKey, merchantCode, merchantRef, strconv.FormatInt(amount, 10))
}

func (g *Gateway) client(ctx context.Context, apiKey string) *http.Client {
	c := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"}))
	c.Timeout = g.timeout
	return c
}

func (g *Gateway) CreateTransaction(ctx context.Context, o *domain.Order, method domain.PaymentMethod, s domain.StoreSettings) (*domain.PaymentRedirect, error) {
	if o == nil {
		return nil, errors.New("nil order")
	}
	if s.TripayAPIKey == "" || s.TripayPrivateKey == "" || s.TripayMerchantCode == "" {
		return nil, errors.New("payment gateway credentials missing")
	}
	channel := strings.TrimSpace(method.AccountNumber)
	if channel == "" {
		channel = defaultChannel
	}

	items := make([]orderItem, 0, len(o.Items)+1)
	for _, it := range o.Items {
		items = append(items, orderItem{SKU: it.ProductID, Name: it.Title, Price: it.UnitPrice, Quantity: it.Qty})
	}
	if o.DiscountAmount > 0 {
		items = append(items, orderItem{SKU: "DISCOUNT", Name: "Diskon " + o.VoucherCode, Price: -o.DiscountAmount, Quantity: 1})
	}

	payload := createReq{
		Method:        channel,
		MerchantRef:   o.ID,
		Amount:        o.Total,
		CustomerName:  o.CustomerName,
		CustomerEmail: contactEmail(o.CustomerContact, s.Email),
		CustomerPhone: contactPhone(o.CustomerContact),
		OrderItems:    items,
		CallbackURL:   g.publicURL + "/webhooks/tripay",
		ReturnURL:     g.publicURL + "/pay/" + o.ID,
		ExpiredTime:   g.now().Add(expiry).Unix(),
		Signature:     Signature(s.TripayPrivateKey, s.TripayMerchantCode, o.ID, o.Total),
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/transaction/create", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client(ctx, s.TripayAPIKey).Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	var out createResp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("gateway status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	if res.StatusCode >= 300 || !out.Success {
		if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("gateway rejected credentials (status %d): %s", res.StatusCode, out.Message)
		}
		return nil, fmt.Errorf("gateway status %d: %s", res.StatusCode, out.Message)
	}
	if out.Data.CheckoutURL == "" {
		return nil, errors.New("gateway response missing checkout url")
	}
	return &domain.PaymentRedirect{URL: out.Data.CheckoutURL, Reference: out.Data.Reference}, nil
}

func contactEmail(contact, fallback string) string {
	if strings.Contains(contact, "@") {
		return strings.TrimSpace(contact)
	}
	return fallback
}

func contactPhone(contact string) string {
	if strings.Contains(contact, "@") {
		return ""
	}
	return strings.TrimSpace(contact)
}

// Callback is the body the gateway posts when a transaction changes state.
type Callback struct {
	Reference   string `json:"reference"`
	MerchantRef string `json:"merchant_ref"`
	Status      string `json:"status"`
	TotalAmount int64  `json:"total_amount"`
}

func (c Callback) Paid() bool { return strings.EqualFold(c.Status, "PAID") }

var ErrBadSignature = errors.New("callback signature mismatch")

// VerifyCallback checks the signature header against the raw body and decodes it.
func VerifyCallback(privateKey, signature string, body []byte) (*Callback, error) {
	if privateKey == "" || signature == "" {
		return nil, ErrBadSignature
	}
	want := sign(privateKey, string(body))
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return nil, ErrBadSignature
	}
	var cb Callback
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, fmt.Errorf("decode callback: %w", err)
	}
	return &cb, nil
}
