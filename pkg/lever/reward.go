package lever

import (
	"time"

	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

// CalculateNewRewardIndex advances one reward index side.
//
// No time past endAt contributes. A zero speed or a zero denominator leaves
// the index unchanged; the timestamp still advances, so elapsed slices are
// never counted twice.
// index += elapsed * speed / denominator
func CalculateNewRewardIndex(speed decimal.Decimal, lastAt, endAt, at time.Time, lastIndex, denominator decimal.Decimal) decimal.Decimal {
	if !lastIndex.IsPositive() {
		lastIndex = RewardInitialIndex
	}

	delta := elapsedSeconds(lastAt, endAt, at)
	if delta <= 0 || !speed.IsPositive() || !denominator.IsPositive() {
		return lastIndex
	}

	accrued := decimal.NewFromInt(delta).Mul(speed)
	return lastIndex.Add(accrued.Div(denominator).Truncate(MaxPrecision))
}

func elapsedSeconds(lastAt, endAt, at time.Time) int64 {
	if !lastAt.Before(endAt) {
		return 0
	}

	if at.After(endAt) {
		at = endAt
	}

	return int64(at.Sub(lastAt) / time.Second)
}

// BorrowShareDenominator borrow-side reward denominator.
//
// Dividing total borrows by the borrow index yields borrow shares, which keeps
// the per-unit reward comparable across interest compounding. The supply side
// uses raw share totals.
func BorrowShareDenominator(totalBorrows, borrowIndex decimal.Decimal) decimal.Decimal {
	if !borrowIndex.IsPositive() {
		return decimal.Zero
	}

	return totalBorrows.Div(borrowIndex).Truncate(MaxPrecision)
}

// UserAccruedReward rewards earned since the user's last sync. A user index
// that was never set counts from the initial constant, never from zero.
func UserAccruedReward(globalIndex, userIndex, userAmount decimal.Decimal) decimal.Decimal {
	if !userIndex.IsPositive() {
		userIndex = RewardInitialIndex
	}

	return number.NonNegative(globalIndex.Sub(userIndex)).Mul(userAmount).Truncate(MaxPrecision)
}
