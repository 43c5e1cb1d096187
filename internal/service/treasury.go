package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/SolYield/yieldgate/internal/pkg/logger"
	"github.com/shopspring/decimal"
)

// Treasury moves value between an owner's external balance and the
// vault's custody pool. Each call is atomic; the vault never observes a
// half-applied transfer.
type Treasury interface {
	TransferIn(ctx context.Context, owner string, amount uint64) error
	TransferOut(ctx context.Context, owner string, amount uint64) error
}

// CustodyPool is the in-process treasury. It tracks the aggregate
// custody balance across all owners and refuses any transfer out that
// the pool cannot cover, which is the solvency end of the ledger's
// per-owner sufficiency check.
type CustodyPool struct {
	mu      sync.Mutex
	balance uint64
}

func NewCustodyPool() *CustodyPool {
	return &CustodyPool{}
}

func (p *CustodyPool) TransferIn(ctx context.Context, owner string, amount uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance += amount
	logger.Debug("custody transfer in", "owner", owner, "amount", amount, "pool", p.balance)
	return nil
}

func (p *CustodyPool) TransferOut(ctx context.Context, owner string, amount uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if amount > p.balance {
		return fmt.Errorf("custody pool underflow: out %d exceeds pool %d", amount, p.balance)
	}
	p.balance -= amount
	logger.Debug("custody transfer out", "owner", owner, "amount", amount, "pool", p.balance)
	return nil
}

func (p *CustodyPool) Balance() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance
}

// BalanceDecimal reports the pool in whole tokens for operator views,
// assuming the configured token decimals.
func (p *CustodyPool) BalanceDecimal(tokenDecimals int32) decimal.Decimal {
	return decimal.New(int64(p.Balance()), -tokenDecimals)
}
