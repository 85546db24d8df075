package evtdata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var alphaKey = ProjectileKey{Mass: 4, Charge: 2}
var protonKey = ProjectileKey{Mass: 1, Charge: 1}

func TestNewInterpolatedGasUnknownName(t *testing.T) {
	store := openTestStore(t)

	var unknown *ErrUnknownGas
	_, err := NewInterpolatedGas(store, "xenon", 150)
	require.ErrorAs(t, err, &unknown)
}

func TestInterpolatedGasDensity(t *testing.T) {
	store := openTestStore(t)
	addLinearGas(t, store, "helium", 4.002, alphaKey)

	gas, err := NewInterpolatedGas(store, "helium", 760)
	require.NoError(t, err)
	require.InEpsilon(t, 4.002/24040, gas.Density(), 1e-12)
}

func TestInterpolatedGasProjectiles(t *testing.T) {
	store := openTestStore(t)
	addLinearGas(t, store, "helium", 4.002, alphaKey, protonKey)

	gas, err := NewInterpolatedGas(store, "helium", 150)
	require.NoError(t, err)
	require.Equal(t, []ProjectileKey{protonKey, alphaKey}, gas.Projectiles())

	var unknown *ErrUnknownProjectile
	_, err = gas.EnergyLoss(1, 3, 1)
	require.ErrorAs(t, err, &unknown)
	_, err = gas.Range(1, 3, 1)
	require.ErrorAs(t, err, &unknown)
	_, err = gas.InverseRange(1, 3, 1)
	require.ErrorAs(t, err, &unknown)
}

func TestInterpolatedGasEnergyLoss(t *testing.T) {
	store := openTestStore(t)
	addLinearGas(t, store, "helium", 4.002, alphaKey)

	gas, err := NewInterpolatedGas(store, "helium", 150)
	require.NoError(t, err)
	density := gas.Density()

	// 1 MeV is a node of the reference grid, so the spline value is exact:
	// the tabulated mass stopping power scaled by density in MeV/cm * 100.
	dedx, err := gas.EnergyLoss(1, 4, 2)
	require.NoError(t, err)
	require.InEpsilon(t, 2*density*100, dedx, 1e-9)
}

func TestInterpolatedGasRangeRoundTrip(t *testing.T) {
	store := openTestStore(t)
	addLinearGas(t, store, "helium", 4.002, alphaKey)

	gas, err := NewInterpolatedGas(store, "helium", 150)
	require.NoError(t, err)
	density := gas.Density()

	rng, err := gas.Range(1, 4, 2)
	require.NoError(t, err)
	require.InEpsilon(t, 3/(density*100), rng, 1e-9)

	en, err := gas.InverseRange(rng, 4, 2)
	require.NoError(t, err)
	require.InEpsilon(t, 1.0, en, 1e-9)
}

func TestInterpolatedGasPartialPressure(t *testing.T) {
	store := openTestStore(t)
	addLinearGas(t, store, "helium", 4.002, alphaKey)

	full, err := NewInterpolatedGas(store, "helium", 760)
	require.NoError(t, err)
	partial, err := NewInterpolatedGas(store, "helium", 76)
	require.NoError(t, err)

	dedxFull, err := full.EnergyLoss(1, 4, 2)
	require.NoError(t, err)
	dedxPartial, err := partial.EnergyLoss(1, 4, 2)
	require.NoError(t, err)
	require.InEpsilon(t, dedxFull/10, dedxPartial, 1e-9)
}

func TestNewInterpolatedGasDuplicateEnergy(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.AddGas("dup", 4.002))
	require.NoError(t, store.AddStoppingPoints("dup", 4, 2, []StoppingPoint{
		{Energy: 1, Stopping: 2, Range: 3},
		{Energy: 1, Stopping: 2.5, Range: 3.5},
		{Energy: 2, Stopping: 4, Range: 6},
	}))

	var bad *ErrBadTable
	_, err := NewInterpolatedGas(store, "dup", 150)
	require.ErrorAs(t, err, &bad)
	require.Equal(t, "dup", bad.Gas)
}

func TestNewInterpolatedGasNonIncreasingRange(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.AddGas("folded", 4.002))
	require.NoError(t, store.AddStoppingPoints("folded", 4, 2, []StoppingPoint{
		{Energy: 1, Stopping: 2, Range: 3},
		{Energy: 2, Stopping: 4, Range: 3},
	}))

	var bad *ErrBadTable
	_, err := NewInterpolatedGas(store, "folded", 150)
	require.ErrorAs(t, err, &bad)
}

func TestNewInterpolatedGasTooFewPoints(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.AddGas("thin", 4.002))
	require.NoError(t, store.AddStoppingPoints("thin", 4, 2,
		[]StoppingPoint{{Energy: 1, Stopping: 2, Range: 3}}))

	_, err := NewInterpolatedGas(store, "thin", 150)
	require.Error(t, err)
}
