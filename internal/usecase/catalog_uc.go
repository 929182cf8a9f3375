package usecase

import (
	"context"
	"strings"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

type CatalogUC struct {
	State *State
}

func (uc *CatalogUC) ListProducts() []domain.Product {
	return uc.State.Products()
}

// GetProduct resolves a product by id or by name slug.
func (uc *CatalogUC) GetProduct(key string) (*domain.Product, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrNotFound
	}
	for _, p := range uc.State.Products() {
		if p.ID == key || p.Slug() == key {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (uc *CatalogUC) UpsertProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := p.Validate(); err != nil {
		return p, err
	}
	if p.ID == "" {
		p.ID = domain.NewID()
	}
	err := uc.State.Update(ctx, func(tx *Tx) error {
		tx.SetProducts(upsertByID(tx.Products(), p, func(x domain.Product) string { return x.ID }))
		return nil
	})
	return p, err
}

func (uc *CatalogUC) DeleteProduct(ctx context.Context, id string) error {
	return uc.State.Update(ctx, func(tx *Tx) error {
		next, ok := deleteByID(tx.Products(), id, func(x domain.Product) string { return x.ID })
		if !ok {
			return domain.ErrNotFound
		}
		tx.SetProducts(next)
		return nil
	})
}

func (uc *CatalogUC) ListVouchers() []domain.Voucher {
	return uc.State.Vouchers()
}

func (uc *CatalogUC) UpsertVoucher(ctx context.Context, v domain.Voucher) (domain.Voucher, error) {
	v.Code = domain.CanonicalCode(v.Code)
	if err := v.Validate(); err != nil {
		return v, err
	}
	if v.ID == "" {
		v.ID = domain.NewID()
	}
	err := uc.State.Update(ctx, func(tx *Tx) error {
		current := tx.Vouchers()
		if v.IsActive {
			for _, other := range current {
				if other.ID != v.ID && other.IsActive && domain.CanonicalCode(other.Code) == v.Code {
					return domain.Invalid("code", "already used by another active voucher")
				}
			}
		}
		tx.SetVouchers(upsertByID(current, v, func(x domain.Voucher) string { return x.ID }))
		return nil
	})
	return v, err
}

func (uc *CatalogUC) DeleteVoucher(ctx context.Context, id string) error {
	return uc.State.Update(ctx, func(tx *Tx) error {
		next, ok := deleteByID(tx.Vouchers(), id, func(x domain.Voucher) string { return x.ID })
		if !ok {
			return domain.ErrNotFound
		}
		tx.SetVouchers(next)
		return nil
	})
}

func (uc *CatalogUC) ListAffiliates() []domain.Affiliate {
	return uc.State.Affiliates()
}

func (uc *CatalogUC) UpsertAffiliate(ctx context.Context, a domain.Affiliate) (domain.Affiliate, error) {
	a.Code = domain.CanonicalCode(a.Code)
	if err := a.Validate(); err != nil {
		return a, err
	}
	if a.ID == "" {
		a.ID = domain.NewID()
	}
	err := uc.State.Update(ctx, func(tx *Tx) error {
		current := tx.Affiliates()
		for _, other := range current {
			if other.ID != a.ID && domain.CanonicalCode(other.Code) == a.Code {
				return domain.Invalid("code", "already used by another affiliate")
			}
		}
		tx.SetAffiliates(upsertByID(current, a, func(x domain.Affiliate) string { return x.ID }))
		return nil
	})
	return a, err
}

func (uc *CatalogUC) DeleteAffiliate(ctx context.Context, id string) error {
	return uc.State.Update(ctx, func(tx *Tx) error {
		next, ok := deleteByID(tx.Affiliates(), id, func(x domain.Affiliate) string { return x.ID })
		if !ok {
			return domain.ErrNotFound
		}
		tx.SetAffiliates(next)
		return nil
	})
}

// AffiliateLogin is a plain equality check on code and password.
func (uc *CatalogUC) AffiliateLogin(code, password string) (*domain.Affiliate, error) {
	affiliates := uc.State.Affiliates()
	idx := FindAffiliate(code, affiliates)
	if idx < 0 || affiliates[idx].Password != password {
		return nil, domain.ErrUnauthorized
	}
	return &affiliates[idx], nil
}

func (uc *CatalogUC) GetAffiliate(id string) (*domain.Affiliate, error) {
	for _, a := range uc.State.Affiliates() {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (uc *CatalogUC) ListPaymentMethods(activeOnly bool) []domain.PaymentMethod {
	all := uc.State.PaymentMethods()
	if !activeOnly {
		return all
	}
	out := make([]domain.PaymentMethod, 0, len(all))
	for _, m := range all {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out
}

func (uc *CatalogUC) UpsertPaymentMethod(ctx context.Context, m domain.PaymentMethod) (domain.PaymentMethod, error) {
	m.Type = domain.PaymentType(domain.CanonicalCode(string(m.Type)))
	if err := m.Validate(); err != nil {
		return m, err
	}
	if m.ID == "" {
		m.ID = domain.NewID()
	}
	err := uc.State.Update(ctx, func(tx *Tx) error {
		tx.SetPaymentMethods(upsertByID(tx.PaymentMethods(), m, func(x domain.PaymentMethod) string { return x.ID }))
		return nil
	})
	return m, err
}

func (uc *CatalogUC) DeletePaymentMethod(ctx context.Context, id string) error {
	return uc.State.Update(ctx, func(tx *Tx) error {
		next, ok := deleteByID(tx.PaymentMethods(), id, func(x domain.PaymentMethod) string { return x.ID })
		if !ok {
			return domain.ErrNotFound
		}
		tx.SetPaymentMethods(next)
		return nil
	})
}

func (uc *CatalogUC) Settings() domain.StoreSettings {
	return uc.State.Settings()
}

// UpdateSettings stores s, keeping the current remote credentials when s leaves
// them empty. It reports whether the credentials changed.
func (uc *CatalogUC) UpdateSettings(ctx context.Context, s domain.StoreSettings) (bool, error) {
	if strings.TrimSpace(s.StoreName) == "" {
		return false, domain.Invalid("storeName", "required")
	}
	var changed bool
	err := uc.State.Update(ctx, func(tx *Tx) error {
		current := tx.Settings()
		if s.RemoteDSN == "" {
			s.RemoteDSN = current.RemoteDSN
		}
		changed = s.RemoteDSN != current.RemoteDSN
		tx.SetSettings(s)
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

// SetRemoteDSN replaces only the stored credentials; an empty dsn disconnects.
func (uc *CatalogUC) SetRemoteDSN(ctx context.Context, dsn string) (bool, error) {
	dsn = strings.TrimSpace(dsn)
	var changed bool
	err := uc.State.Update(ctx, func(tx *Tx) error {
		current := tx.Settings()
		if dsn == current.RemoteDSN {
			return nil
		}
		current.RemoteDSN = dsn
		tx.SetSettings(current)
		changed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func upsertByID[T any](list []T, rec T, id func(T) string) []T {
	for i := range list {
		if id(list[i]) == id(rec) {
			list[i] = rec
			return list
		}
	}
	return append(list, rec)
}

func deleteByID[T any](list []T, target string, id func(T) string) ([]T, bool) {
	out := make([]T, 0, len(list))
	found := false
	for _, x := range list {
		if id(x) == target {
			found = true
			continue
		}
		out = append(out, x)
	}
	return out, found
}
