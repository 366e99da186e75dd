package number

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCeil(t *testing.T) {
	d := Decimal("0.123456789")
	assert.Equal(t, "0.1235", Ceil(d, 4).String())
	assert.Equal(t, "0.123456789", Ceil(d, 16).String())
}

func TestNonNegative(t *testing.T) {
	assert.True(t, NonNegative(Decimal("-3")).IsZero())
	assert.Equal(t, "3", NonNegative(Decimal("3")).String())
}

func TestMin(t *testing.T) {
	assert.Equal(t, "1", Min(decimal.New(1, 0), decimal.New(2, 0)).String())
	assert.Equal(t, "1", Min(decimal.New(2, 0), decimal.New(1, 0)).String())
}
