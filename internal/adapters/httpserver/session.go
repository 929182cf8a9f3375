package httpserver

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

const (
	cartCookie      = "cart"
	referralCookie  = "ref"
	adminCookie     = "admin_token"
	affiliateCookie = "affiliate_token"

	roleAdmin     = "admin"
	roleAffiliate = "affiliate"

	adminTTL     = 6 * time.Hour
	affiliateTTL = 72 * time.Hour
	referralTTL  = 30 * 24 * time.Hour
)

type cartLine struct {
	ProductID string `json:"p"`
	Qty       int    `json:"q"`
}

// cartPayload is what the signed cart cookie carries. Session keys checkout
// submissions so a double submit from one cart runs once.
type cartPayload struct {
	Session string     `json:"s"`
	Items   []cartLine `json:"i,omitempty"`
	Voucher string     `json:"v,omitempty"`
}

func (s *Server) sign(b []byte) []byte {
	h := hmac.New(sha256.New, s.sessionKey)
	h.Write(b)
	return h.Sum(nil)
}

func (s *Server) readCart(r *http.Request) cartPayload {
	c, err := r.Cookie(cartCookie)
	if err != nil {
		return cartPayload{Session: domain.NewID()}
	}
	parts := strings.SplitN(c.Value, ".", 2)
	if len(parts) != 2 {
		return cartPayload{Session: domain.NewID()}
	}
	sig, _ := base64.RawURLEncoding.DecodeString(parts[0])
	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	if !hmac.Equal(sig, s.sign(payload)) {
		return cartPayload{Session: domain.NewID()}
	}
	var cp cartPayload
	if err := json.Unmarshal(payload, &cp); err != nil || cp.Session == "" {
		return cartPayload{Session: domain.NewID()}
	}
	return cp
}

func (s *Server) writeCart(w http.ResponseWriter, cp cartPayload) {
	b, _ := json.Marshal(cp)
	val := base64.RawURLEncoding.EncodeToString(s.sign(b)) + "." + base64.RawURLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{Name: cartCookie, Value: val, Path: "/", MaxAge: 60 * 60 * 24 * 7, HttpOnly: true, Secure: s.opts.SecureCookies, SameSite: http.SameSiteLaxMode})
}

// cart rebuilds the session cart against the live catalog. Lines whose product
// no longer exists, or whose quantity is out of range, are dropped.
func (s *Server) cart(cp cartPayload) domain.Cart {
	var c domain.Cart
	for _, l := range cp.Items {
		p, err := s.catalog.GetProduct(l.ProductID)
		if err != nil || p.ID != l.ProductID {
			continue
		}
		_ = c.Add(*p, l.Qty)
	}
	return c
}

func toPayload(session, voucher string, c domain.Cart) cartPayload {
	cp := cartPayload{Session: session, Voucher: voucher}
	for _, it := range c.Items {
		cp.Items = append(cp.Items, cartLine{ProductID: it.Product.ID, Qty: it.Quantity})
	}
	return cp
}

type referralKey struct{}

// captureReferral remembers ?ref=CODE for the rest of the browsing session.
func (s *Server) captureReferral(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code := domain.CanonicalCode(r.URL.Query().Get("ref")); code != "" {
			http.SetCookie(w, &http.Cookie{Name: referralCookie, Value: code, Path: "/", MaxAge: int(referralTTL.Seconds()), HttpOnly: true, Secure: s.opts.SecureCookies, SameSite: http.SameSiteLaxMode})
			r = r.WithContext(context.WithValue(r.Context(), referralKey{}, code))
		}
		next.ServeHTTP(w, r)
	})
}

func referralFrom(r *http.Request) string {
	if code, ok := r.Context().Value(referralKey{}).(string); ok {
		return code
	}
	if c, err := r.Cookie(referralCookie); err == nil {
		return domain.CanonicalCode(c.Value)
	}
	return ""
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(role, subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "digistore",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	return tok, exp, err
}

func (s *Server) verifyToken(tok, role string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Role != role || claims.Subject == "" {
		return nil, errors.New("token role mismatch")
	}
	return claims, nil
}

// bearerOrCookie prefers the Authorization header and falls back to the cookie.
func bearerOrCookie(r *http.Request, cookie string) string {
	if f := strings.Fields(r.Header.Get("Authorization")); len(f) == 2 && strings.EqualFold(f[0], "bearer") {
		return f[1]
	}
	if c, err := r.Cookie(cookie); err == nil {
		return c.Value
	}
	return ""
}

func (s *Server) setTokenCookie(w http.ResponseWriter, name, tok string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: tok, Path: "/", MaxAge: int(ttl.Seconds()), HttpOnly: true, Secure: s.opts.SecureCookies, SameSite: http.SameSiteStrictMode})
}

func (s *Server) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: s.opts.SecureCookies, SameSite: http.SameSiteStrictMode})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.verifyToken(bearerOrCookie(r, adminCookie), roleAdmin); err != nil {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type affiliateKey struct{}

func (s *Server) requireAffiliate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.verifyToken(bearerOrCookie(r, affiliateCookie), roleAffiliate)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), affiliateKey{}, claims.Subject)))
	})
}
