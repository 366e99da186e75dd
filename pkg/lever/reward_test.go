package lever

import (
	"testing"
	"time"

	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateNewRewardIndex(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(100 * time.Second)
	speed := number.Decimal("2")
	denom := number.Decimal("1000")

	// 10s * 2 / 1000 = 0.02
	index := CalculateNewRewardIndex(speed, start, end, start.Add(10*time.Second), RewardInitialIndex, denom)
	assert.Equal(t, "1.02", index.String())

	// zero speed: index unchanged
	index = CalculateNewRewardIndex(decimal.Zero, start, end, start.Add(10*time.Second), RewardInitialIndex, denom)
	assert.Equal(t, "1", index.String())

	// zero denominator: index unchanged
	index = CalculateNewRewardIndex(speed, start, end, start.Add(10*time.Second), RewardInitialIndex, decimal.Zero)
	assert.Equal(t, "1", index.String())
}

func TestRewardIndexEndTimeClamp(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(50 * time.Second)
	speed := number.Decimal("1")
	denom := number.Decimal("100")

	// only the 50 in-window seconds of the 80 elapsed count
	index := CalculateNewRewardIndex(speed, start, end, start.Add(80*time.Second), RewardInitialIndex, denom)
	assert.Equal(t, "1.5", index.String())

	// accruing past the end twice is idempotent
	again := CalculateNewRewardIndex(speed, start.Add(80*time.Second), end, start.Add(200*time.Second), index, denom)
	assert.True(t, again.Equal(index))
}

func TestRewardIndexNeverDecreases(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	index := RewardInitialIndex
	last := start

	for i := 1; i <= 20; i++ {
		at := start.Add(time.Duration(i*200) * time.Second)
		next := CalculateNewRewardIndex(number.Decimal("0.5"), last, end, at, index, number.Decimal("10000"))
		assert.True(t, next.GreaterThanOrEqual(index))
		index = next
		last = at
	}
}

func TestBorrowShareDenominator(t *testing.T) {
	denom := BorrowShareDenominator(number.Decimal("1200"), number.Decimal("1.2"))
	assert.Equal(t, "1000", denom.String())

	assert.True(t, BorrowShareDenominator(number.Decimal("1200"), decimal.Zero).IsZero())
}

func TestUserAccruedReward(t *testing.T) {
	// fresh user counts from the initial constant, not zero
	accrued := UserAccruedReward(number.Decimal("1.5"), decimal.Zero, number.Decimal("100"))
	assert.Equal(t, "50", accrued.String())

	accrued = UserAccruedReward(number.Decimal("1.5"), number.Decimal("1.2"), number.Decimal("100"))
	assert.Equal(t, "30", accrued.String())

	// a stale-but-ahead user index never produces negative rewards
	accrued = UserAccruedReward(number.Decimal("1.1"), number.Decimal("1.2"), number.Decimal("100"))
	assert.True(t, accrued.IsZero())
}
