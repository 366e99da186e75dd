package lever

import (
	"context"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

// BorrowBalance live borrow balance
// balance = borrow.principal * market.borrow_index / borrow.interest_index
func BorrowBalance(ctx context.Context, b *core.Borrow, market *core.Market) decimal.Decimal {
	if !market.BorrowIndex.IsPositive() {
		market.BorrowIndex = decimal.New(1, 0)
	}

	if !b.InterestIndex.IsPositive() {
		b.InterestIndex = market.BorrowIndex
	}

	principalTimesIndex := b.Principal.Mul(market.BorrowIndex)
	return number.Ceil(principalTimesIndex.Div(b.InterestIndex), MaxPrecision)
}

// SeizeShares collateral shares seized for repaying repayAmount of the borrow
// seize = repay * (1 + incentive) * price_borrowed / (price_collateral * exchange_rate)
func SeizeShares(repayAmount, liquidationIncentive, priceBorrowed, priceCollateral, exchangeRate decimal.Decimal) decimal.Decimal {
	if priceCollateral.LessThanOrEqual(decimal.Zero) || exchangeRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	repayValue := repayAmount.Mul(priceBorrowed)
	seizeValue := repayValue.Mul(decimal.New(1, 0).Add(liquidationIncentive))
	return seizeValue.Div(priceCollateral.Mul(exchangeRate)).Truncate(MaxPrecision)
}

// MaxClose largest repay amount one liquidation may cover
func MaxClose(closeFactor, borrowBalance decimal.Decimal) decimal.Decimal {
	return closeFactor.Mul(borrowBalance).Truncate(MaxPrecision)
}
