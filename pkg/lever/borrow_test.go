package lever

import (
	"context"
	"testing"
	"time"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBorrowBalance(t *testing.T) {
	ctx := context.Background()

	market := &core.Market{BorrowIndex: number.Decimal("1.2")}
	borrow := &core.Borrow{
		Principal:     number.Decimal("1000"),
		InterestIndex: number.Decimal("1.0"),
	}

	balance := BorrowBalance(ctx, borrow, market)
	assert.Equal(t, "1200", balance.String())

	// stored balance scales by the index ratio, not by absolute index values
	borrow = &core.Borrow{
		Principal:     number.Decimal("1200"),
		InterestIndex: number.Decimal("1.2"),
	}
	market.BorrowIndex = number.Decimal("1.8")
	assert.Equal(t, "1800", BorrowBalance(ctx, borrow, market).String())
}

func TestBorrowBalanceMatchesSimulation(t *testing.T) {
	ctx := context.Background()
	genesis := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	market := testMarket(genesis)

	borrow := &core.Borrow{
		Principal:     number.Decimal("700000"),
		InterestIndex: market.BorrowIndex,
	}

	// walk a month in daily steps, tracking the owed amount directly
	simulated := borrow.Principal
	for day := 1; day <= 30; day++ {
		rate := market.BorrowRatePerSecond
		if day == 1 {
			rate = curBorrowRatePerSecondInternal(market)
		}
		simulated = simulated.Add(simulated.Mul(rate.Mul(decimal.NewFromInt(86400))))
		AccrueInterest(ctx, market, genesis.Add(time.Duration(day)*24*time.Hour))
	}

	balance := BorrowBalance(ctx, borrow, market)
	diff := balance.Sub(simulated).Abs()
	tolerance := simulated.Mul(number.Decimal("0.0001"))
	assert.True(t, diff.LessThan(tolerance), "balance %s simulated %s", balance, simulated)
}

func TestSeizeShares(t *testing.T) {
	repay := number.Decimal("100")
	priceBorrowed := number.Decimal("2")
	priceCollateral := number.Decimal("4")
	exchangeRate := number.Decimal("1")

	// 100 * 2 * 1.1 / (4 * 1) = 55
	seized := SeizeShares(repay, number.Decimal("0.1"), priceBorrowed, priceCollateral, exchangeRate)
	assert.Equal(t, "55", seized.String())

	// monotonic in the liquidation incentive
	prev := decimal.Zero
	for _, incentive := range []string{"0.01", "0.05", "0.1", "0.2", "0.5"} {
		s := SeizeShares(repay, number.Decimal(incentive), priceBorrowed, priceCollateral, exchangeRate)
		assert.True(t, s.GreaterThan(prev))
		prev = s
	}

	// degenerate prices seize nothing
	assert.True(t, SeizeShares(repay, number.Decimal("0.1"), priceBorrowed, decimal.Zero, exchangeRate).IsZero())
}

func TestMaxClose(t *testing.T) {
	got := MaxClose(number.Decimal("0.5"), number.Decimal("1000"))
	assert.Equal(t, "500", got.String())
}
