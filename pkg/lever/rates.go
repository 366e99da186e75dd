package lever

import (
	"github.com/shopspring/decimal"
)

var (
	// SecondsPerYear interest and emission time unit is one second
	SecondsPerYear = decimal.NewFromInt(31536000)
	// CloseFactorMin close factor must be strictly greater than this value
	CloseFactorMin = decimal.NewFromFloat(0.05)
	// CloseFactorMax close factor must not exceed this value
	CloseFactorMax = decimal.NewFromFloat(0.9)
	// CollateralFactorMax collateral factor stays within [0, 0.9]
	CollateralFactorMax = decimal.NewFromFloat(0.9)
	// LiquidationIncentiveMin must be no less than this value
	LiquidationIncentiveMin = decimal.NewFromFloat(0.01)
	// LiquidationIncentiveMax must be no greater than this value
	LiquidationIncentiveMax = decimal.NewFromFloat(0.9)
	// RewardInitialIndex canonical initial value of every reward index, and of
	// a user index on first touch
	RewardInitialIndex = decimal.New(1, 0)
	// EmissionCap per-second emission rates must stay below this value
	EmissionCap = decimal.NewFromInt(100)
	// MaxPrecision max precision
	MaxPrecision int32 = 16
)

// UtilizationRate utilization rate
// utilization_rate = market.total_borrows/(market.total_cash + market.total_borrows - market.reserves)
func UtilizationRate(cash, borrows, reserves decimal.Decimal) decimal.Decimal {
	total := cash.Add(borrows).Sub(reserves)
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	return borrows.Div(total).Truncate(MaxPrecision)
}

// GetExchangeRate exchange rate
// exchange_rate = (market.total_cash + market.total_borrows - market.reserves) / market.total_shares
func GetExchangeRate(totalCash, totalBorrows, totalReserves, totalShares, initExchangeRate decimal.Decimal) decimal.Decimal {
	if totalShares.LessThanOrEqual(decimal.Zero) {
		return initExchangeRate
	}

	return totalCash.Add(totalBorrows).Sub(totalReserves).Div(totalShares).Truncate(MaxPrecision)
}

// GetBorrowRatePerSecond jump-rate model borrow rate per second
func GetBorrowRatePerSecond(utilizationRate, baseRate, multiplier, jumpMultiplier, kink decimal.Decimal) decimal.Decimal {
	if kink.IsZero() || utilizationRate.LessThanOrEqual(kink) {
		return utilizationRate.Mul(perSecond(multiplier)).Add(perSecond(baseRate)).Truncate(MaxPrecision)
	}

	normalRate := kink.Mul(perSecond(multiplier)).Add(perSecond(baseRate))
	excessUtilRate := utilizationRate.Sub(kink)
	return excessUtilRate.Mul(perSecond(jumpMultiplier)).Add(normalRate).Truncate(MaxPrecision)
}

// GetSupplyRatePerSecond supply rate per second
// supply_rate = borrow_rate * utilization_rate * (1 - reserve_factor)
func GetSupplyRatePerSecond(utilizationRate, baseRate, multiplier, jumpMultiplier, kink, reserveFactor decimal.Decimal) decimal.Decimal {
	borrowRate := GetBorrowRatePerSecond(utilizationRate, baseRate, multiplier, jumpMultiplier, kink)
	rateToPool := borrowRate.Mul(decimal.New(1, 0).Sub(reserveFactor))
	return utilizationRate.Mul(rateToPool).Truncate(MaxPrecision)
}

func perSecond(yearlyRate decimal.Decimal) decimal.Decimal {
	return yearlyRate.Div(SecondsPerYear).Truncate(MaxPrecision)
}
