// internal/pkg/money/money_test.go
package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountArithmetic(t *testing.T) {
	assert.Equal(t, Amount(150000), Amount(100000).Add(Amount(50000)))
	assert.Equal(t, Amount(70000), Amount(100000).Sub(Amount(30000)))
	assert.Equal(t, Amount(-30000), Amount(0).Sub(Amount(30000)))
	assert.Equal(t, Amount(450000), Amount(150000).MulQty(3))
}

func TestAmountComparisons(t *testing.T) {
	assert.True(t, Amount(100).LessThan(Amount(200)))
	assert.False(t, Amount(200).LessThan(Amount(200)))
	assert.True(t, Amount(-1).IsNegative())
	assert.False(t, Zero.IsNegative())
}

func TestAmountFormatting(t *testing.T) {
	assert.Equal(t, int64(120000), Amount(120000).Int64())
	assert.Equal(t, "120000", Amount(120000).String())
}
