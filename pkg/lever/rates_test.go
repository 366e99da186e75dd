package lever

import (
	"testing"

	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUtilizationRate(t *testing.T) {
	assert.True(t, UtilizationRate(decimal.Zero, decimal.Zero, decimal.Zero).IsZero())

	u := UtilizationRate(number.Decimal("300000"), number.Decimal("700000"), decimal.Zero)
	assert.Equal(t, "0.7", u.String())

	// reserves shrink the denominator
	u = UtilizationRate(number.Decimal("300"), number.Decimal("500"), number.Decimal("800"))
	assert.True(t, u.IsZero())
}

func TestGetExchangeRate(t *testing.T) {
	init := decimal.New(1, 0)

	// no shares yet, init rate applies
	rate := GetExchangeRate(decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, init)
	assert.Equal(t, "1", rate.String())

	rate = GetExchangeRate(number.Decimal("1100"), number.Decimal("0"), number.Decimal("100"), number.Decimal("1000"), init)
	assert.Equal(t, "1", rate.String())

	rate = GetExchangeRate(number.Decimal("1200"), number.Decimal("0"), number.Decimal("100"), number.Decimal("1000"), init)
	assert.Equal(t, "1.1", rate.String())
}

func TestGetBorrowRatePerSecond(t *testing.T) {
	base := number.Decimal("0.02")
	multiplier := number.Decimal("0.025")
	jump := number.Decimal("1")
	kink := number.Decimal("0.8")

	// below the kink: base + multiplier * u
	u := number.Decimal("0.7")
	got := GetBorrowRatePerSecond(u, base, multiplier, jump, kink)
	wantYearly := base.Add(multiplier.Mul(u)) // 0.0375
	diff := got.Mul(SecondsPerYear).Sub(wantYearly).Abs()
	assert.True(t, diff.LessThan(number.Decimal("0.0001")), "got %s", got.Mul(SecondsPerYear))

	// above the kink the jump multiplier applies to the excess
	u = number.Decimal("0.9")
	got = GetBorrowRatePerSecond(u, base, multiplier, jump, kink)
	wantYearly = base.Add(multiplier.Mul(kink)).Add(jump.Mul(u.Sub(kink))) // 0.14
	diff = got.Mul(SecondsPerYear).Sub(wantYearly).Abs()
	assert.True(t, diff.LessThan(number.Decimal("0.0001")), "got %s", got.Mul(SecondsPerYear))

	// rate is monotonic in utilization across the kink
	below := GetBorrowRatePerSecond(number.Decimal("0.79"), base, multiplier, jump, kink)
	above := GetBorrowRatePerSecond(number.Decimal("0.81"), base, multiplier, jump, kink)
	assert.True(t, above.GreaterThan(below))
}

func TestGetSupplyRatePerSecond(t *testing.T) {
	base := number.Decimal("0.02")
	multiplier := number.Decimal("0.025")
	jump := number.Decimal("1")
	kink := number.Decimal("0.8")
	reserveFactor := number.Decimal("0.1")

	u := number.Decimal("0.5")
	borrowRate := GetBorrowRatePerSecond(u, base, multiplier, jump, kink)
	supplyRate := GetSupplyRatePerSecond(u, base, multiplier, jump, kink, reserveFactor)

	want := borrowRate.Mul(u).Mul(number.Decimal("0.9"))
	diff := supplyRate.Sub(want).Abs()
	assert.True(t, diff.LessThanOrEqual(number.Decimal("0.0000000000000002")))

	// supply rate never exceeds the borrow rate
	assert.True(t, supplyRate.LessThan(borrowRate))
}
