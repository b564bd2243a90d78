package domain

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPayment_Scenario(t *testing.T) {
	fee, proceeds := SplitPayment(5_000_000_000, DefaultPlatformFeeBps)
	assert.Equal(t, uint64(125_000_000), fee)
	assert.Equal(t, uint64(4_875_000_000), proceeds)
}

func TestSplitPayment_Conservation(t *testing.T) {
	prices := []uint64{1, 39, 40, 41, 9_999, 10_000, 10_001, 123_456_789, math.MaxUint64 / 3, math.MaxUint64}
	bpsValues := []uint16{0, 1, 250, 333, 9_999, 10_000}
	for _, price := range prices {
		for _, bps := range bpsValues {
			fee, proceeds := SplitPayment(price, bps)
			assert.Equal(t, price, fee+proceeds, "price=%d bps=%d", price, bps)

			want := new(big.Int).Mul(new(big.Int).SetUint64(price), big.NewInt(int64(bps)))
			want.Quo(want, big.NewInt(10_000))
			assert.Equal(t, want.Uint64(), fee, "price=%d bps=%d", price, bps)
		}
	}
}

func TestSplitPayment_TruncatesTowardZero(t *testing.T) {
	// 39 * 250 / 10000 = 0.975
	fee, proceeds := SplitPayment(39, 250)
	assert.Equal(t, uint64(0), fee)
	assert.Equal(t, uint64(39), proceeds)
}

func TestSplitPayment_ClampsFee(t *testing.T) {
	fee, proceeds := SplitPayment(1_000, math.MaxUint16)
	assert.Equal(t, uint64(1_000), fee)
	assert.Equal(t, uint64(0), proceeds)
}
