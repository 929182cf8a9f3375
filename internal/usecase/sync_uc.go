package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/acsaicontentstudio-collab/digistore-app/internal/domain"
)

type SyncStatus string

const (
	SyncDisconnected SyncStatus = "DISCONNECTED"
	SyncConnecting   SyncStatus = "CONNECTING"
	SyncSynced       SyncStatus = "SYNCED"
	SyncError        SyncStatus = "ERROR"
)

type SyncState struct {
	Status      SyncStatus    `json:"status"`
	Error       string        `json:"error,omitempty"`
	PushError   string        `json:"pushError,omitempty"`
	Epoch       uint64        `json:"epoch"`
	InProgress  bool          `json:"inProgress"`
	LastPullAt  *time.Time    `json:"lastPullAt,omitempty"`
	LastPushAt  *time.Time    `json:"lastPushAt,omitempty"`
	Quarantined []Quarantined `json:"quarantined,omitempty"`
}

type StepResult struct {
	Collection string `json:"collection"`
	Rows       int    `json:"rows"`
	Skipped    bool   `json:"skipped,omitempty"`
	Error      string `json:"error,omitempty"`
}

type SyncReport struct {
	Epoch         uint64        `json:"epoch"`
	Steps         []StepResult  `json:"steps"`
	Quarantined   []Quarantined `json:"quarantined,omitempty"`
	NormalizedIDs int           `json:"normalizedIds,omitempty"`
}

// SyncUC keeps local state in line with the optional remote store. Every
// Reconnect starts a new epoch; work started under an older epoch is dropped
// instead of being applied.
type SyncUC struct {
	State *State
	Dial  domain.RemoteDialer
	Now   func() time.Time

	mu     sync.Mutex
	epoch  uint64
	remote domain.RemoteStore
	state  SyncState
	pushes singleflight.Group
}

func (uc *SyncUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

func (uc *SyncUC) Status() SyncState {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	st := uc.state
	if st.Status == "" {
		st.Status = SyncDisconnected
	}
	st.Epoch = uc.epoch
	return st
}

func (uc *SyncUC) Connected() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.remote != nil
}

// Start runs Reconnect in the background; progress is visible through Status.
func (uc *SyncUC) Start(ctx context.Context, dsn string) {
	go func() {
		if _, err := uc.Reconnect(ctx, dsn); err != nil && !errors.Is(err, domain.ErrStaleEpoch) {
			log.Error().Err(err).Msg("remote sync failed, serving local data")
		}
	}()
}

// Reconnect drops the current remote handle and, when dsn is not empty, dials a
// new one and pulls every collection from it.
func (uc *SyncUC) Reconnect(ctx context.Context, dsn string) (*SyncReport, error) {
	uc.mu.Lock()
	uc.epoch++
	epoch := uc.epoch
	old := uc.remote
	uc.remote = nil
	if dsn == "" {
		uc.state = SyncState{Status: SyncDisconnected}
	} else {
		uc.state.Status = SyncConnecting
		uc.state.Error = ""
		uc.state.InProgress = true
	}
	uc.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			log.Warn().Err(err).Msg("close previous remote handle")
		}
	}
	if dsn == "" {
		log.Info().Uint64("epoch", epoch).Msg("remote sync disconnected")
		return nil, nil
	}

	remote, err := uc.Dial(ctx, dsn)
	if err != nil {
		err = fmt.Errorf("connect: %w", err)
		uc.fail(epoch, err)
		return nil, err
	}
	uc.mu.Lock()
	if uc.epoch != epoch {
		uc.mu.Unlock()
		_ = remote.Close()
		return nil, domain.ErrStaleEpoch
	}
	uc.remote = remote
	uc.mu.Unlock()

	log.Info().Uint64("epoch", epoch).Msg("remote store connected, pulling")
	return uc.pull(ctx, epoch, remote)
}

// Pull refreshes local state from the current remote handle.
func (uc *SyncUC) Pull(ctx context.Context) (*SyncReport, error) {
	uc.mu.Lock()
	remote, epoch := uc.remote, uc.epoch
	if remote == nil {
		uc.mu.Unlock()
		return nil, domain.ErrNotConnected
	}
	uc.state.InProgress = true
	uc.mu.Unlock()
	return uc.pull(ctx, epoch, remote)
}

type pullStep struct {
	name string
	run  func(ctx context.Context) (rows int, bad []Quarantined, apply func() error, skip bool, err error)
}

func (uc *SyncUC) pullSteps(remote domain.RemoteStore) []pullStep {
	return []pullStep{
		{domain.CollectionProducts, func(ctx context.Context) (int, []Quarantined, func() error, bool, error) {
			rows, err := remote.ListProducts(ctx)
			if err != nil {
				return 0, nil, nil, false, err
			}
			items, bad := parseRows(domain.CollectionProducts, rows, productFromRow, func(r domain.ProductRow) string { return r.ID })
			return len(items), bad, func() error { return uc.State.ReplaceProducts(ctx, items) }, false, nil
		}},
		{domain.CollectionVouchers, func(ctx context.Context) (int, []Quarantined, func() error, bool, error) {
			rows, err := remote.ListVouchers(ctx)
			if err != nil {
				return 0, nil, nil, false, err
			}
			items, bad := parseRows(domain.CollectionVouchers, rows, voucherFromRow, func(r domain.VoucherRow) string { return r.ID })
			return len(items), bad, func() error { return uc.State.ReplaceVouchers(ctx, items) }, false, nil
		}},
		{domain.CollectionAffiliates, func(ctx context.Context) (int, []Quarantined, func() error, bool, error) {
			rows, err := remote.ListAffiliates(ctx)
			if err != nil {
				return 0, nil, nil, false, err
			}
			items, bad := parseRows(domain.CollectionAffiliates, rows, affiliateFromRow, func(r domain.AffiliateRow) string { return r.ID })
			return len(items), bad, func() error { return uc.State.ReplaceAffiliates(ctx, items) }, false, nil
		}},
		{domain.CollectionSettings, func(ctx context.Context) (int, []Quarantined, func() error, bool, error) {
			row, err := remote.GetSettings(ctx)
			if errors.Is(err, domain.ErrNotFound) || (err == nil && row == nil) {
				return 0, nil, nil, true, nil
			}
			if err != nil {
				return 0, nil, nil, false, err
			}
			return 1, nil, func() error {
				return uc.State.Update(ctx, func(tx *Tx) error {
					tx.SetSettings(mergeSettings(tx.Settings(), *row))
					return nil
				})
			}, false, nil
		}},
		{domain.CollectionPaymentMethods, func(ctx context.Context) (int, []Quarantined, func() error, bool, error) {
			rows, err := remote.ListPaymentMethods(ctx)
			if err != nil {
				return 0, nil, nil, false, err
			}
			items, bad := parseRows(domain.CollectionPaymentMethods, rows, paymentMethodFromRow, func(r domain.PaymentMethodRow) string { return r.ID })
			return len(items), bad, func() error { return uc.State.ReplacePaymentMethods(ctx, items) }, false, nil
		}},
	}
}

// pull applies each collection as soon as it is fetched. A failure stops the
// cycle; collections applied before it stay applied.
func (uc *SyncUC) pull(ctx context.Context, epoch uint64, remote domain.RemoteStore) (*SyncReport, error) {
	rep := &SyncReport{Epoch: epoch}
	for _, step := range uc.pullSteps(remote) {
		rows, bad, apply, skip, err := step.run(ctx)
		if err == nil && apply != nil {
			err = uc.applyIfCurrent(epoch, apply)
		}
		if err != nil {
			rep.Steps = append(rep.Steps, StepResult{Collection: step.name, Error: err.Error()})
			if errors.Is(err, domain.ErrStaleEpoch) {
				log.Info().Uint64("epoch", epoch).Str("collection", step.name).Msg("pull superseded, discarding")
				return rep, err
			}
			err = fmt.Errorf("pull %s: %w", step.name, err)
			uc.fail(epoch, err)
			return rep, err
		}
		for _, q := range bad {
			log.Warn().Str("collection", q.Collection).Str("id", q.ID).Str("reason", q.Reason).Msg("remote row quarantined")
		}
		rep.Quarantined = append(rep.Quarantined, bad...)
		rep.Steps = append(rep.Steps, StepResult{Collection: step.name, Rows: rows, Skipped: skip})
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.epoch != epoch {
		return rep, domain.ErrStaleEpoch
	}
	now := uc.now().UTC()
	uc.state.Status = SyncSynced
	uc.state.Error = ""
	uc.state.InProgress = false
	uc.state.LastPullAt = &now
	uc.state.Quarantined = rep.Quarantined
	log.Info().Uint64("epoch", epoch).Int("quarantined", len(rep.Quarantined)).Msg("remote pull complete")
	return rep, nil
}

// applyIfCurrent runs apply only while epoch is still the current one. The
// lock is held across apply so a Reconnect cannot slip in between.
func (uc *SyncUC) applyIfCurrent(epoch uint64, apply func() error) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.epoch != epoch {
		return domain.ErrStaleEpoch
	}
	return apply()
}

func (uc *SyncUC) fail(epoch uint64, err error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.epoch != epoch {
		return
	}
	uc.state.Status = SyncError
	uc.state.Error = err.Error()
	uc.state.InProgress = false
	log.Error().Err(err).Uint64("epoch", epoch).Msg("remote sync error")
}

// Push uploads every local collection to the remote store. Concurrent calls
// share one run.
func (uc *SyncUC) Push(ctx context.Context) (*SyncReport, error) {
	v, err, _ := uc.pushes.Do("push", func() (any, error) {
		return uc.push(ctx)
	})
	rep, _ := v.(*SyncReport)
	return rep, err
}

func (uc *SyncUC) push(ctx context.Context) (*SyncReport, error) {
	uc.mu.Lock()
	remote, epoch := uc.remote, uc.epoch
	if remote == nil {
		uc.mu.Unlock()
		return nil, domain.ErrNotConnected
	}
	uc.state.InProgress = true
	uc.mu.Unlock()

	rep := &SyncReport{Epoch: epoch}
	err := uc.runPush(ctx, epoch, remote, rep)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.epoch == epoch {
		uc.state.InProgress = false
		if err != nil {
			uc.state.PushError = err.Error()
		} else {
			now := uc.now().UTC()
			uc.state.LastPushAt = &now
			uc.state.PushError = ""
		}
	}
	if err != nil {
		log.Error().Err(err).Uint64("epoch", epoch).Msg("remote push stopped")
		return rep, err
	}
	log.Info().Uint64("epoch", epoch).Int("normalized_ids", rep.NormalizedIDs).Msg("remote push complete")
	return rep, nil
}

func (uc *SyncUC) runPush(ctx context.Context, epoch uint64, remote domain.RemoteStore, rep *SyncReport) error {
	n, err := uc.NormalizeIDs(ctx)
	if err != nil {
		return fmt.Errorf("normalize ids: %w", err)
	}
	rep.NormalizedIDs = n

	products := uc.State.Products()
	vouchers := uc.State.Vouchers()
	affiliates := uc.State.Affiliates()
	settings := uc.State.Settings()
	methods := uc.State.PaymentMethods()

	steps := []struct {
		name string
		rows int
		run  func() error
	}{
		{domain.CollectionProducts, len(products), func() error {
			return remote.UpsertProducts(ctx, mapRows(products, productToRow))
		}},
		{domain.CollectionVouchers, len(vouchers), func() error {
			return remote.UpsertVouchers(ctx, mapRows(vouchers, voucherToRow))
		}},
		{domain.CollectionAffiliates, len(affiliates), func() error {
			return remote.UpsertAffiliates(ctx, mapRows(affiliates, affiliateToRow))
		}},
		{domain.CollectionSettings, 1, func() error {
			return remote.UpsertSettings(ctx, settingsToRow(settings))
		}},
		{domain.CollectionPaymentMethods, len(methods), func() error {
			return remote.UpsertPaymentMethods(ctx, mapRows(methods, paymentMethodToRow))
		}},
	}
	for _, step := range steps {
		if step.rows == 0 {
			rep.Steps = append(rep.Steps, StepResult{Collection: step.name, Skipped: true})
			continue
		}
		if !uc.current(epoch) {
			return domain.ErrStaleEpoch
		}
		if err := step.run(); err != nil {
			rep.Steps = append(rep.Steps, StepResult{Collection: step.name, Error: err.Error()})
			return fmt.Errorf("push %s: %w", step.name, err)
		}
		rep.Steps = append(rep.Steps, StepResult{Collection: step.name, Rows: step.rows})
	}
	return nil
}

func (uc *SyncUC) current(epoch uint64) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.epoch == epoch
}

// NormalizeIDs rewrites non-canonical ids in local state and returns how many
// changed. Orders referring to a rewritten affiliate, product or payment method
// are updated to the new id. Running it on canonical state changes nothing.
func (uc *SyncUC) NormalizeIDs(ctx context.Context) (int, error) {
	changed := 0
	err := uc.State.Update(ctx, func(tx *Tx) error {
		products, pm := normalizeAll(domain.CollectionProducts, tx.Products(),
			func(p domain.Product) string { return p.ID }, func(p *domain.Product, id string) { p.ID = id })
		if len(pm) > 0 {
			tx.SetProducts(products)
		}
		vouchers, vm := normalizeAll(domain.CollectionVouchers, tx.Vouchers(),
			func(v domain.Voucher) string { return v.ID }, func(v *domain.Voucher, id string) { v.ID = id })
		if len(vm) > 0 {
			tx.SetVouchers(vouchers)
		}
		methods, mm := normalizeAll(domain.CollectionPaymentMethods, tx.PaymentMethods(),
			func(m domain.PaymentMethod) string { return m.ID }, func(m *domain.PaymentMethod, id string) { m.ID = id })
		if len(mm) > 0 {
			tx.SetPaymentMethods(methods)
		}
		affiliates, am := normalizeAll(domain.CollectionAffiliates, tx.Affiliates(),
			func(a domain.Affiliate) string { return a.ID }, func(a *domain.Affiliate, id string) { a.ID = id })
		if len(am) > 0 {
			tx.SetAffiliates(affiliates)
		}
		changed = len(pm) + len(vm) + len(mm) + len(am)
		if len(am)+len(pm)+len(mm) == 0 {
			return nil
		}
		orders := tx.Orders()
		touched := false
		for i := range orders {
			o := &orders[i]
			if id, ok := am[o.AffiliateID]; ok {
				o.AffiliateID, touched = id, true
			}
			if id, ok := mm[o.PaymentMethodID]; ok {
				o.PaymentMethodID, touched = id, true
			}
			for j := range o.Items {
				if id, ok := pm[o.Items[j].ProductID]; ok {
					o.Items[j].ProductID, touched = id, true
				}
			}
		}
		if touched {
			tx.SetOrders(orders)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		log.Info().Int("count", changed).Msg("legacy ids normalized")
	}
	return changed, nil
}

func normalizeAll[T any](collection string, list []T, get func(T) string, set func(*T, string)) ([]T, map[string]string) {
	rewritten := map[string]string{}
	for i := range list {
		old := get(list[i])
		id, changed := domain.NormalizeID(collection, old)
		if changed {
			set(&list[i], id)
			rewritten[old] = id
		}
	}
	return list, rewritten
}

func mapRows[T, R any](list []T, fn func(T) R) []R {
	out := make([]R, len(list))
	for i, v := range list {
		out[i] = fn(v)
	}
	return out
}
