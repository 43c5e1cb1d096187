package repository

import (
	"context"
	"sync"
	"time"

	"github.com/SolYield/yieldgate/internal/model"
)

// In-memory stores used when no DSN/Redis is configured, and by tests.
// They hold deep copies so callers never share slices with the store.

type MemoryRegistryRepo struct {
	mu  sync.RWMutex
	reg *model.Registry
}

func NewMemoryRegistryRepo() *MemoryRegistryRepo {
	return &MemoryRegistryRepo{}
}

func (r *MemoryRegistryRepo) Get(ctx context.Context) (*model.Registry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.reg == nil {
		return nil, ErrNotFound
	}
	return copyRegistry(r.reg), nil
}

func (r *MemoryRegistryRepo) Create(ctx context.Context, reg *model.Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reg != nil {
		return ErrAlreadyExists
	}
	r.reg = copyRegistry(reg)
	return nil
}

func (r *MemoryRegistryRepo) ReplaceVenues(ctx context.Context, venues []model.Venue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reg == nil {
		return ErrNotFound
	}
	r.reg.Venues = append([]model.Venue(nil), venues...)
	return nil
}

func copyRegistry(reg *model.Registry) *model.Registry {
	out := &model.Registry{Admin: reg.Admin}
	out.Chains = append([]model.Chain(nil), reg.Chains...)
	out.Venues = append([]model.Venue(nil), reg.Venues...)
	return out
}

type MemoryLedgerRepo struct {
	mu      sync.RWMutex
	ledgers map[string]*model.OwnerLedger
}

func NewMemoryLedgerRepo() *MemoryLedgerRepo {
	return &MemoryLedgerRepo{ledgers: make(map[string]*model.OwnerLedger)}
}

func (r *MemoryLedgerRepo) Get(ctx context.Context, owner string) (*model.OwnerLedger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ledger, ok := r.ledgers[owner]
	if !ok {
		return nil, ErrNotFound
	}
	return copyLedger(ledger), nil
}

func (r *MemoryLedgerRepo) Create(ctx context.Context, ledger *model.OwnerLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ledgers[ledger.Owner]; ok {
		return ErrAlreadyExists
	}
	r.ledgers[ledger.Owner] = copyLedger(ledger)
	return nil
}

func (r *MemoryLedgerRepo) Update(ctx context.Context, ledger *model.OwnerLedger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ledgers[ledger.Owner]; !ok {
		return ErrNotFound
	}
	r.ledgers[ledger.Owner] = copyLedger(ledger)
	return nil
}

func copyLedger(ledger *model.OwnerLedger) *model.OwnerLedger {
	out := &model.OwnerLedger{
		Owner:           ledger.Owner,
		DepositedAmount: ledger.DepositedAmount,
		ClaimedRewards:  ledger.ClaimedRewards,
	}
	out.Positions = append([]model.Position(nil), ledger.Positions...)
	return out
}

// MemoryUsageStore keeps day-scoped withdraw counters; entries for past
// days are dropped lazily.
type MemoryUsageStore struct {
	mu     sync.Mutex
	day    string
	counts map[string]int
	values map[string]uint64
}

func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{
		counts: make(map[string]int),
		values: make(map[string]uint64),
	}
}

func (s *MemoryUsageStore) rollover() {
	today := time.Now().Format("2006-01-02")
	if s.day != today {
		s.day = today
		s.counts = make(map[string]int)
		s.values = make(map[string]uint64)
	}
}

func (s *MemoryUsageStore) GetDailyWithdrawUsage(ctx context.Context, owner string) (int, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover()
	return s.counts[owner], s.values[owner], nil
}

func (s *MemoryUsageStore) AddDailyWithdrawUsage(ctx context.Context, owner string, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover()
	s.counts[owner]++
	s.values[owner] += amount
	return nil
}
