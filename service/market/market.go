package market

import (
	"context"
	"fmt"
	"time"

	"lever/core"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type service struct {
	marketStore core.IMarketStore
}

// New new market service
func New(marketStore core.IMarketStore) core.IMarketService {
	return &service{marketStore: marketStore}
}

// AccrueInterest compounds interest up to at and persists the market. Any
// accounting inconsistency aborts the enclosing transition.
func (s *service) AccrueInterest(ctx context.Context, tx *db.DB, market *core.Market, at time.Time) error {
	lever.AccrueInterest(ctx, market, at)

	if market.TotalSupplies().IsNegative() {
		return fmt.Errorf("market %s: negative total supplies after accrual", market.Symbol)
	}

	return s.marketStore.Update(ctx, tx, market)
}

func (s *service) CurBorrowRate(ctx context.Context, market *core.Market) (decimal.Decimal, error) {
	return lever.CurBorrowRate(market), nil
}

func (s *service) CurSupplyRate(ctx context.Context, market *core.Market) (decimal.Decimal, error) {
	return lever.CurSupplyRate(market), nil
}
