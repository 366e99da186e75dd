package lever

import (
	"context"
	"testing"
	"time"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarket(genesis time.Time) *core.Market {
	return &core.Market{
		AssetID:          "asset",
		Symbol:           "BTC",
		TotalCash:        number.Decimal("300000"),
		TotalBorrows:     number.Decimal("700000"),
		InitExchangeRate: decimal.New(1, 0),
		ReserveFactor:    number.Decimal("0.1"),
		BaseRate:         number.Decimal("0.02"),
		Multiplier:       number.Decimal("0.025"),
		JumpMultiplier:   number.Decimal("1"),
		Kink:             number.Decimal("0.8"),
		TotalShares:      number.Decimal("1000000"),
		BorrowIndex:      decimal.New(1, 0),
		AccruedAt:        genesis,
	}
}

func TestAccrueInterestOneYear(t *testing.T) {
	ctx := context.Background()
	genesis := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	market := testMarket(genesis)

	AccrueInterest(ctx, market, genesis.Add(365*24*time.Hour))

	// u = 0.7, yearly borrow rate = 0.02 + 0.025*0.7 = 0.0375
	owed := market.BorrowIndex.Mul(number.Decimal("700000"))
	assert.True(t, owed.GreaterThan(number.Decimal("726240")), "owed %s", owed)
	assert.True(t, owed.LessThan(number.Decimal("726260")), "owed %s", owed)

	// reserves keep their cut of the accumulated interest
	interest := market.TotalBorrows.Sub(number.Decimal("700000"))
	wantReserves := interest.Mul(number.Decimal("0.1"))
	assert.True(t, market.Reserves.Sub(wantReserves).Abs().LessThan(number.Decimal("0.01")))

	// cash + borrows - reserves stays non-negative
	assert.False(t, market.TotalSupplies().IsNegative())
}

func TestAccrueInterestIdempotentWithinSecond(t *testing.T) {
	ctx := context.Background()
	genesis := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	market := testMarket(genesis)

	at := genesis.Add(time.Hour)
	AccrueInterest(ctx, market, at)
	index := market.BorrowIndex
	borrows := market.TotalBorrows

	AccrueInterest(ctx, market, at.Add(500*time.Millisecond))
	assert.True(t, market.BorrowIndex.Equal(index))
	assert.True(t, market.TotalBorrows.Equal(borrows))
}

func TestAccrueInterestCompounds(t *testing.T) {
	ctx := context.Background()
	genesis := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	single := testMarket(genesis)
	AccrueInterest(ctx, single, genesis.Add(8760*time.Hour))

	stepped := testMarket(genesis)
	AccrueInterest(ctx, stepped, genesis.Add(4380*time.Hour))
	AccrueInterest(ctx, stepped, genesis.Add(8760*time.Hour))

	// accruing in steps compounds on the grown principal
	assert.True(t, stepped.BorrowIndex.GreaterThanOrEqual(single.BorrowIndex))
	assert.True(t, stepped.TotalBorrows.GreaterThanOrEqual(single.TotalBorrows))
}

func TestExchangeRateNonDecreasing(t *testing.T) {
	ctx := context.Background()
	genesis := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	market := testMarket(genesis)

	AccrueInterest(ctx, market, genesis.Add(time.Minute))
	prev := market.ExchangeRate
	require.True(t, prev.IsPositive())

	for i := 1; i <= 10; i++ {
		AccrueInterest(ctx, market, genesis.Add(time.Minute+time.Duration(i)*24*time.Hour))
		assert.True(t, market.ExchangeRate.GreaterThanOrEqual(prev))
		prev = market.ExchangeRate
	}
}

func TestBorrowIndexNonDecreasing(t *testing.T) {
	ctx := context.Background()
	genesis := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	market := testMarket(genesis)

	prev := market.BorrowIndex
	for i := 1; i <= 10; i++ {
		AccrueInterest(ctx, market, genesis.Add(time.Duration(i)*time.Hour))
		assert.True(t, market.BorrowIndex.GreaterThanOrEqual(prev))
		prev = market.BorrowIndex
	}
}
