package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SolYield/yieldgate/internal/allocator"
	"github.com/SolYield/yieldgate/internal/config"
	"github.com/SolYield/yieldgate/internal/model"
	"github.com/SolYield/yieldgate/internal/pkg/apperrors"
	"github.com/SolYield/yieldgate/internal/pkg/logger"
	"github.com/SolYield/yieldgate/internal/pkg/metrics"
	"github.com/SolYield/yieldgate/internal/repository"
	"github.com/SolYield/yieldgate/internal/rewards"
	"github.com/shopspring/decimal"
)

type LedgerRepo interface {
	Get(ctx context.Context, owner string) (*model.OwnerLedger, error)
	Create(ctx context.Context, ledger *model.OwnerLedger) error
	Update(ctx context.Context, ledger *model.OwnerLedger) error
}

type UsageRepo interface {
	GetDailyWithdrawUsage(ctx context.Context, owner string) (int, uint64, error)
	AddDailyWithdrawUsage(ctx context.Context, owner string, amount uint64) error
}

// VaultService orchestrates deposit/withdraw/claim against one owner
// ledger at a time. All guard clauses run before any mutation; a
// per-owner lock serializes operations on the same record.
type VaultService struct {
	ledgers  LedgerRepo
	registry *RegistryService
	treasury Treasury
	usage    UsageRepo // optional
	limits   config.LimitsConfig
	events   EventSink // optional
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewVaultService(ledgers LedgerRepo, registry *RegistryService, treasury Treasury, usage UsageRepo, limits config.LimitsConfig, events EventSink) *VaultService {
	return &VaultService{
		ledgers:  ledgers,
		registry: registry,
		treasury: treasury,
		usage:    usage,
		limits:   limits,
		events:   events,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// SetClock overrides the time source; tests only.
func (s *VaultService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *VaultService) lockOwner(owner string) func() {
	s.mu.Lock()
	l, ok := s.locks[owner]
	if !ok {
		l = &sync.Mutex{}
		s.locks[owner] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Deposit moves amount into custody and allocates it across venues.
// One deposit lifecycle per owner: an existing ledger rejects the call.
func (s *VaultService) Deposit(ctx context.Context, owner string, req model.DepositRequest) (*model.OwnerLedger, error) {
	if owner == "" {
		return nil, apperrors.NewInvalidRequest("owner identity is required")
	}
	if req.Amount == 0 {
		metrics.DepositsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.NewInvalidRequest("deposit amount must be positive")
	}
	if req.RiskTolerance > allocator.MaxRiskTolerance {
		metrics.DepositsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.New(apperrors.ErrInvalidRiskTolerance,
			fmt.Sprintf("risk tolerance %d outside [0,%d]", req.RiskTolerance, allocator.MaxRiskTolerance), nil)
	}

	unlock := s.lockOwner(owner)
	defer unlock()

	if _, err := s.ledgers.Get(ctx, owner); err == nil {
		metrics.DepositsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.New(apperrors.ErrLedgerExists, "owner already has an active ledger", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Wrap(err)
	}

	reg, err := s.registry.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().Unix()
	positions, err := allocator.Allocate(req.Amount, req.RiskTolerance, req.PreferredChains, reg.Venues, now)
	if err != nil {
		appErr := apperrors.Wrap(err)
		metrics.AllocationRejects.WithLabelValues(string(appErr.Type)).Inc()
		metrics.DepositsTotal.WithLabelValues("rejected").Inc()
		return nil, appErr
	}

	if err := s.treasury.TransferIn(ctx, owner, req.Amount); err != nil {
		metrics.DepositsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(fmt.Errorf("custody transfer failed: %w", err))
	}

	ledger := &model.OwnerLedger{
		Owner:           owner,
		DepositedAmount: req.Amount,
		Positions:       positions,
	}
	if err := s.ledgers.Create(ctx, ledger); err != nil {
		// Undo the custody transfer so no value is stranded.
		if refundErr := s.treasury.TransferOut(ctx, owner, req.Amount); refundErr != nil {
			logger.Error("custody refund failed after ledger write failure",
				"owner", owner, "amount", req.Amount, "error", refundErr)
		}
		metrics.DepositsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperrors.New(apperrors.ErrLedgerExists, "owner already has an active ledger", nil)
		}
		return nil, apperrors.Wrap(err)
	}

	metrics.DepositsTotal.WithLabelValues("ok").Inc()
	logger.Info("deposit allocated", "owner", owner, "amount", req.Amount,
		"positions", len(positions), "risk_tolerance", req.RiskTolerance)
	s.publish(VaultEvent{Type: EventDeposit, Owner: owner, Amount: req.Amount, Timestamp: now})
	return ledger, nil
}

// Withdraw returns amount to the owner and decrements the recorded
// principal. Individual positions are not adjusted; after a partial
// withdrawal their amounts no longer sum to the remaining principal.
func (s *VaultService) Withdraw(ctx context.Context, owner string, amount uint64) (*model.OwnerLedger, error) {
	if amount == 0 {
		metrics.WithdrawalsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.NewInvalidRequest("withdraw amount must be positive")
	}

	unlock := s.lockOwner(owner)
	defer unlock()

	ledger, err := s.getOwned(ctx, owner)
	if err != nil {
		metrics.WithdrawalsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if amount > ledger.DepositedAmount {
		metrics.WithdrawalsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.NewInsufficientFunds(
			fmt.Sprintf("withdraw %d exceeds deposited %d", amount, ledger.DepositedAmount))
	}
	if err := s.checkWithdrawLimits(ctx, owner, amount); err != nil {
		metrics.WithdrawalsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if err := s.treasury.TransferOut(ctx, owner, amount); err != nil {
		metrics.WithdrawalsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(fmt.Errorf("custody transfer failed: %w", err))
	}

	ledger.DepositedAmount -= amount
	if err := s.ledgers.Update(ctx, ledger); err != nil {
		metrics.WithdrawalsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Wrap(err)
	}

	if s.usage != nil {
		if err := s.usage.AddDailyWithdrawUsage(ctx, owner, amount); err != nil {
			logger.Warn("usage tracking failed", "owner", owner, "error", err)
		}
	}

	metrics.WithdrawalsTotal.WithLabelValues("ok").Inc()
	logger.Info("withdrawal processed", "owner", owner, "amount", amount,
		"remaining", ledger.DepositedAmount)
	s.publish(VaultEvent{Type: EventWithdraw, Owner: owner, Amount: amount, Timestamp: s.now().Unix()})
	return ledger, nil
}

// Claim accrues rewards on all open positions up to now and rolls the
// total into claimed_rewards. No value moves; rewards are recorded only.
func (s *VaultService) Claim(ctx context.Context, owner string) (uint64, *model.OwnerLedger, error) {
	unlock := s.lockOwner(owner)
	defer unlock()

	ledger, err := s.getOwned(ctx, owner)
	if err != nil {
		metrics.ClaimsTotal.WithLabelValues("rejected").Inc()
		return 0, nil, err
	}

	now := s.now().Unix()
	reward := rewards.Accrue(ledger.Positions, now)
	ledger.ClaimedRewards += reward

	if err := s.ledgers.Update(ctx, ledger); err != nil {
		metrics.ClaimsTotal.WithLabelValues("error").Inc()
		return 0, nil, apperrors.Wrap(err)
	}

	metrics.ClaimsTotal.WithLabelValues("ok").Inc()
	metrics.RewardsAccrued.Add(float64(reward))
	logger.Info("rewards claimed", "owner", owner, "reward", reward,
		"claimed_total", ledger.ClaimedRewards)
	s.publish(VaultEvent{Type: EventClaim, Owner: owner, Reward: reward, Timestamp: now})
	return reward, ledger, nil
}

// Ledger returns the owner's ledger snapshot.
func (s *VaultService) Ledger(ctx context.Context, owner string) (*model.OwnerLedger, error) {
	return s.getOwned(ctx, owner)
}

// Projection computes the APY-weighted expected annual yield per open
// position, from the venue catalog as it stands now. Read-only; the
// accrual engine does not use these figures.
func (s *VaultService) Projection(ctx context.Context, owner string) (*model.YieldProjection, error) {
	ledger, err := s.getOwned(ctx, owner)
	if err != nil {
		return nil, err
	}
	reg, err := s.registry.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	apyByVenue := make(map[uint32]uint32, len(reg.Venues))
	for _, v := range reg.Venues {
		apyByVenue[v.VenueID] = v.APY
	}

	out := &model.YieldProjection{
		Owner:           ledger.Owner,
		DepositedAmount: ledger.DepositedAmount,
	}
	totalYield := decimal.Zero
	for _, p := range ledger.Positions {
		apy := apyByVenue[p.VenueID] // zero if the venue left the catalog
		rate := decimal.New(int64(apy), -4)
		projected := decimal.New(int64(p.Amount), 0).Mul(rate)
		totalYield = totalYield.Add(projected)
		out.Positions = append(out.Positions, model.PositionProjection{
			VenueID:        p.VenueID,
			ChainID:        p.ChainID,
			Amount:         p.Amount,
			APY:            decimal.New(int64(apy), -2).StringFixed(2),
			ProjectedYield: projected.StringFixed(0),
		})
	}

	out.ProjectedYield = totalYield.StringFixed(0)
	if ledger.DepositedAmount > 0 {
		blended := totalYield.
			Div(decimal.New(int64(ledger.DepositedAmount), 0)).
			Mul(decimal.New(100, 0))
		out.BlendedAPY = blended.StringFixed(2)
	} else {
		out.BlendedAPY = "0.00"
	}
	return out, nil
}

func (s *VaultService) getOwned(ctx context.Context, owner string) (*model.OwnerLedger, error) {
	if owner == "" {
		return nil, apperrors.NewUnauthorized("owner identity is required")
	}
	ledger, err := s.ledgers.Get(ctx, owner)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "no ledger for this owner", nil)
		}
		return nil, apperrors.Wrap(err)
	}
	// The keyed lookup makes this equality structural; kept as the
	// explicit ownership guard.
	if !IsOwner(owner, ledger) {
		return nil, apperrors.NewUnauthorized("caller does not own this ledger")
	}
	return ledger, nil
}

func (s *VaultService) checkWithdrawLimits(ctx context.Context, owner string, amount uint64) error {
	if s.usage == nil {
		return nil
	}
	maxCount := s.limits.MaxDailyWithdrawCount
	maxValue := s.limits.MaxDailyWithdrawValue
	if maxCount <= 0 && maxValue == 0 {
		return nil
	}

	count, value, err := s.usage.GetDailyWithdrawUsage(ctx, owner)
	if err != nil {
		logger.Warn("usage lookup failed, skipping daily cap", "owner", owner, "error", err)
		return nil
	}
	if maxCount > 0 && count+1 > maxCount {
		return apperrors.NewInvalidRequest(
			fmt.Sprintf("daily withdrawal count limit %d reached", maxCount))
	}
	if maxValue > 0 && value+amount > maxValue {
		return apperrors.NewInvalidRequest(
			fmt.Sprintf("daily withdrawal value limit %d exceeded", maxValue))
	}
	return nil
}

func (s *VaultService) publish(evt VaultEvent) {
	if s.events != nil {
		s.events.Publish(evt)
	}
}
