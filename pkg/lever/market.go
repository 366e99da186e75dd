package lever

import (
	"context"
	"time"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

// CurBorrowRate current borrow APY
func CurBorrowRate(market *core.Market) decimal.Decimal {
	return curBorrowRatePerSecondInternal(market).Mul(SecondsPerYear).Truncate(MaxPrecision)
}

func curBorrowRatePerSecondInternal(market *core.Market) decimal.Decimal {
	return GetBorrowRatePerSecond(
		UtilizationRate(market.TotalCash, market.TotalBorrows, market.Reserves),
		market.BaseRate,
		market.Multiplier,
		market.JumpMultiplier,
		market.Kink,
	)
}

// CurSupplyRate current supply APY
func CurSupplyRate(market *core.Market) decimal.Decimal {
	return curSupplyRatePerSecondInternal(market).Mul(SecondsPerYear).Truncate(MaxPrecision)
}

func curSupplyRatePerSecondInternal(market *core.Market) decimal.Decimal {
	return GetSupplyRatePerSecond(
		UtilizationRate(market.TotalCash, market.TotalBorrows, market.Reserves),
		market.BaseRate,
		market.Multiplier,
		market.JumpMultiplier,
		market.Kink,
		market.ReserveFactor,
	)
}

// AccrueInterest compounds market interest for the seconds elapsed since the
// last accrual and refreshes the cached rates. Idempotent within one second;
// every balance-changing action accrues first.
func AccrueInterest(ctx context.Context, market *core.Market, at time.Time) {
	if !market.BorrowIndex.IsPositive() {
		market.BorrowIndex = decimal.New(1, 0)
	}

	if market.AccruedAt.IsZero() {
		market.AccruedAt = at
	}

	if delta := int64(at.Sub(market.AccruedAt) / time.Second); delta > 0 {
		borrowRate := curBorrowRatePerSecondInternal(market)
		timesBorrowRate := borrowRate.Mul(decimal.NewFromInt(delta))
		interestAccumulated := market.TotalBorrows.Mul(timesBorrowRate).Truncate(MaxPrecision)

		market.AccruedAt = market.AccruedAt.Add(time.Duration(delta) * time.Second)
		market.TotalBorrows = market.TotalBorrows.Add(interestAccumulated)
		market.Reserves = market.Reserves.Add(interestAccumulated.Mul(market.ReserveFactor).Truncate(MaxPrecision))
		// compounds multiplicatively so per-account scaling stays exact
		market.BorrowIndex = market.BorrowIndex.Add(
			number.Ceil(timesBorrowRate.Mul(market.BorrowIndex), MaxPrecision))
	}

	market.UtilizationRate = UtilizationRate(market.TotalCash, market.TotalBorrows, market.Reserves)
	market.ExchangeRate = GetExchangeRate(market.TotalCash, market.TotalBorrows, market.Reserves, market.TotalShares, market.InitExchangeRate)
	market.SupplyRatePerSecond = curSupplyRatePerSecondInternal(market)
	market.BorrowRatePerSecond = curBorrowRatePerSecondInternal(market)
}
