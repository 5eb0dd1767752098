package tariff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradecast/tradecast/internal/models"
)

func TestComputeDuty_AdValoremAndSpecific(t *testing.T) {
	result, err := ComputeDuty(DutyInput{
		CustomsValue: 100000,
		Quantity:     5000,
		Rate: models.TariffRate{
			AdValoremRate:  2.5,
			SpecificAmount: 0.04,
			SpecificUnit:   "kg",
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 2500.0, result.AdValoremDuty, 1e-9)
	assert.InDelta(t, 200.0, result.SpecificDuty, 1e-9)
	// 100000 * 0.003464 = 346.40, within the fee band.
	assert.InDelta(t, 346.40, result.ProcessingFee, 1e-9)
	assert.InDelta(t, 3046.40, result.TotalDuty, 1e-9)
	assert.InDelta(t, 3.0464, result.EffectiveRate, 1e-6)
}

func TestComputeDuty_ProcessingFeeFloor(t *testing.T) {
	result, err := ComputeDuty(DutyInput{
		CustomsValue: 1000,
		Rate:         models.TariffRate{},
	})
	require.NoError(t, err)
	assert.Equal(t, mpfMin, result.ProcessingFee)
}

func TestComputeDuty_ProcessingFeeCap(t *testing.T) {
	result, err := ComputeDuty(DutyInput{
		CustomsValue: 10_000_000,
		Rate:         models.TariffRate{},
	})
	require.NoError(t, err)
	assert.Equal(t, mpfMax, result.ProcessingFee)
}

func TestComputeDuty_ZeroValueHasNoEffectiveRate(t *testing.T) {
	result, err := ComputeDuty(DutyInput{Rate: models.TariffRate{AdValoremRate: 5}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.EffectiveRate)
	assert.Equal(t, 0.0, result.AdValoremDuty)
}

func TestComputeDuty_RejectsNegativeInputs(t *testing.T) {
	_, err := ComputeDuty(DutyInput{CustomsValue: -1})
	assert.Error(t, err)

	_, err = ComputeDuty(DutyInput{Quantity: -1})
	assert.Error(t, err)
}
