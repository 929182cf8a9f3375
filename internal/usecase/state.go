package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

// Seed supplies the collections used when the persistent store has no entry yet.
type Seed struct {
	Settings       domain.StoreSettings
	Products       []domain.Product
	PaymentMethods []domain.PaymentMethod
	Vouchers       []domain.Voucher
	Affiliates     []domain.Affiliate
}

// State holds the in-memory copy of every managed collection. Each mutation
// replaces a whole collection and is written to the KVStore under the same lock,
// so memory and the store never disagree after a reload.
type State struct {
	kv domain.KVStore

	mu         sync.RWMutex
	settings   domain.StoreSettings
	products   []domain.Product
	methods    []domain.PaymentMethod
	vouchers   []domain.Voucher
	affiliates []domain.Affiliate
	orders     []domain.Order
}

func LoadState(ctx context.Context, kv domain.KVStore, seed Seed) (*State, error) {
	s := &State{kv: kv}
	s.settings = seed.Settings
	s.products = seed.Products
	s.methods = seed.PaymentMethods
	s.vouchers = seed.Vouchers
	s.affiliates = seed.Affiliates

	if _, err := readInto(ctx, kv, domain.CollectionSettings, &s.settings); err != nil {
		return nil, err
	}
	if _, err := readInto(ctx, kv, domain.CollectionProducts, &s.products); err != nil {
		return nil, err
	}
	if _, err := readInto(ctx, kv, domain.CollectionPaymentMethods, &s.methods); err != nil {
		return nil, err
	}
	if _, err := readInto(ctx, kv, domain.CollectionVouchers, &s.vouchers); err != nil {
		return nil, err
	}
	if _, err := readInto(ctx, kv, domain.CollectionAffiliates, &s.affiliates); err != nil {
		return nil, err
	}
	if _, err := readInto(ctx, kv, domain.CollectionOrders, &s.orders); err != nil {
		return nil, err
	}
	return s, nil
}

func readInto(ctx context.Context, kv domain.KVStore, key string, dst any) (bool, error) {
	raw, ok, err := kv.Read(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// persist must be called with s.mu held for writing.
func (s *State) persist(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Write(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *State) Settings() domain.StoreSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *State) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

func (s *State) PaymentMethods() []domain.PaymentMethod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.methods)
}

func (s *State) Vouchers() []domain.Voucher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.vouchers)
}

func (s *State) Affiliates() []domain.Affiliate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.affiliates)
}

func (s *State) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOrders(s.orders)
}

func cloneOrders(orders []domain.Order) []domain.Order {
	out := slices.Clone(orders)
	for i := range out {
		out[i].Items = slices.Clone(out[i].Items)
	}
	return out
}

// The Replace methods swap one whole collection; the remote pull uses them.
func (s *State) ReplaceProducts(ctx context.Context, next []domain.Product) error {
	return replace(ctx, s, domain.CollectionProducts, &s.products, next)
}

func (s *State) ReplacePaymentMethods(ctx context.Context, next []domain.PaymentMethod) error {
	return replace(ctx, s, domain.CollectionPaymentMethods, &s.methods, next)
}

func (s *State) ReplaceVouchers(ctx context.Context, next []domain.Voucher) error {
	return replace(ctx, s, domain.CollectionVouchers, &s.vouchers, next)
}

func (s *State) ReplaceAffiliates(ctx context.Context, next []domain.Affiliate) error {
	return replace(ctx, s, domain.CollectionAffiliates, &s.affiliates, next)
}

// Tx is a mutable view over every collection, used by Update. Getters return
// copies; setters mark the collection to be stored when fn returns.
type Tx struct {
	settings   domain.StoreSettings
	products   []domain.Product
	methods    []domain.PaymentMethod
	vouchers   []domain.Voucher
	affiliates []domain.Affiliate
	orders     []domain.Order

	dirty map[string]bool
}

func (tx *Tx) Settings() domain.StoreSettings { return tx.settings }
func (tx *Tx) Products() []domain.Product { return slices.Clone(tx.products) }
func (tx *Tx) PaymentMethods() []domain.PaymentMethod { return slices.Clone(tx.methods) }
func (tx *Tx) Vouchers() []domain.Voucher { return slices.Clone(tx.vouchers) }
func (tx *Tx) Affiliates() []domain.Affiliate { return slices.Clone(tx.affiliates) }
func (tx *Tx) Orders() []domain.Order { return cloneOrders(tx.orders) }

func (tx *Tx) SetSettings(next domain.StoreSettings) {
	tx.settings = next
	tx.dirty[domain.CollectionSettings] = true
}

func (tx *Tx) SetProducts(next []domain.Product) {
	tx.products = nonNil(next)
	tx.dirty[domain.CollectionProducts] = true
}

func (tx *Tx) SetPaymentMethods(next []domain.PaymentMethod) {
	tx.methods = nonNil(next)
	tx.dirty[domain.CollectionPaymentMethods] = true
}

func (tx *Tx) SetVouchers(next []domain.Voucher) {
	tx.vouchers = nonNil(next)
	tx.dirty[domain.CollectionVouchers] = true
}

func (tx *Tx) SetAffiliates(next []domain.Affiliate) {
	tx.affiliates = nonNil(next)
	tx.dirty[domain.CollectionAffiliates] = true
}

func (tx *Tx) SetOrders(next []domain.Order) {
	tx.orders = nonNil(next)
	tx.dirty[domain.CollectionOrders] = true
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}

type txWrite struct {
	key    string
	next   any
	prev   any
	commit func()
}

// Update runs fn against the current collections and stores whatever fn
// replaced, all inside one critical section. Nothing is stored when fn fails.
// When one of several writes fails, the collections already written are put
// back to their previous value and memory is left untouched.
func (s *State) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{
		settings:   s.settings,
		products:   s.products,
		methods:    s.methods,
		vouchers:   s.vouchers,
		affiliates: s.affiliates,
		orders:     s.orders,
		dirty:      map[string]bool{},
	}
	if err := fn(tx); err != nil {
		return err
	}

	// Orders go last so earnings are never stored for an order that was not.
	all := []txWrite{
		{domain.CollectionSettings, tx.settings, s.settings, func() { s.settings = tx.settings }},
		{domain.CollectionProducts, tx.products, s.products, func() { s.products = slices.Clone(tx.products) }},
		{domain.CollectionPaymentMethods, tx.methods, s.methods, func() { s.methods = slices.Clone(tx.methods) }},
		{domain.CollectionVouchers, tx.vouchers, s.vouchers, func() { s.vouchers = slices.Clone(tx.vouchers) }},
		{domain.CollectionAffiliates, tx.affiliates, s.affiliates, func() { s.affiliates = slices.Clone(tx.affiliates) }},
		{domain.CollectionOrders, tx.orders, s.orders, func() { s.orders = cloneOrders(tx.orders) }},
	}
	var done []txWrite
	for _, w := range all {
		if !tx.dirty[w.key] {
			continue
		}
		if err := s.persist(ctx, w.key, w.next); err != nil {
			for _, d := range done {
				if rerr := s.persist(ctx, d.key, d.prev); rerr != nil {
					log.Error().Err(rerr).Str("collection", d.key).Msg("restore after failed write")
				}
			}
			return err
		}
		done = append(done, w)
	}
	for _, w := range done {
		w.commit()
	}
	return nil
}

func replace[T any](ctx context.Context, s *State, key string, dst *[]T, next []T) error {
	if next == nil {
		next = []T{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(ctx, key, next); err != nil {
		return err
	}
	*dst = slices.Clone(next)
	return nil
}
