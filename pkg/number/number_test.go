package number

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/shopspring/decimal"
)

func TestRoundInt64(t *testing.T) {
	data := map[string]int64{
		"0.4":  0,
		"0.5":  1,
		"1.5":  2,
		"-0.5": -1,
		"-1.5": -2,
		"2.49": 2,
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			assert.Equal(t, v, RoundInt64(decimal.RequireFromString(k)), "ties away from zero")
		})
	}
}

func TestFloorInt64(t *testing.T) {
	data := map[string]int64{
		"0.9":  0,
		"1.0":  1,
		"-0.1": -1,
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			assert.Equal(t, v, FloorInt64(decimal.RequireFromString(k)))
		})
	}
}

func TestScaled(t *testing.T) {
	assert.Equal(t, "100.00000000", Scaled(10000000000, 8).StringFixed(8))
	assert.Equal(t, int64(100000000), Pow10(8))
}
