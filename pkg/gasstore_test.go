package evtdata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *GasStore {
	t.Helper()
	store, err := OpenGasStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// addLinearGas fills a gas with synthetic reference tables where the stopping
// power is 2*energy and the range is 3*energy, over a log-spaced energy grid.
// Linear data survives the monotone spline fits exactly, which makes the
// interpolated values easy to predict in tests.
func addLinearGas(t *testing.T, store *GasStore, name string, molarMass float64, projectiles ...ProjectileKey) {
	t.Helper()
	addLinearGasOver(t, store, name, molarMass, 1e-4, 1e4, projectiles...)
}

func addLinearGasOver(t *testing.T, store *GasStore, name string, molarMass, emin, emax float64, projectiles ...ProjectileKey) {
	t.Helper()
	require.NoError(t, store.AddGas(name, molarMass))

	energies := logspace(emin, emax, 81)
	points := make([]StoppingPoint, len(energies))
	for i, en := range energies {
		points[i] = StoppingPoint{Energy: en, Stopping: 2 * en, Range: 3 * en}
	}
	for _, key := range projectiles {
		require.NoError(t, store.AddStoppingPoints(name, key.Mass, key.Charge, points))
	}
}

func TestGasStoreMolarMass(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.AddGas("helium", 4.002))

	molarMass, err := store.MolarMass("helium")
	require.NoError(t, err)
	require.Equal(t, 4.002, molarMass)

	var unknown *ErrUnknownGas
	_, err = store.MolarMass("xenon")
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "xenon", unknown.Name)
}

func TestGasStoreProjectiles(t *testing.T) {
	store := openTestStore(t)
	addLinearGas(t, store, "helium", 4.002,
		ProjectileKey{Mass: 4, Charge: 2}, ProjectileKey{Mass: 1, Charge: 1})

	keys, err := store.Projectiles("helium")
	require.NoError(t, err)
	require.Equal(t, []ProjectileKey{{Mass: 1, Charge: 1}, {Mass: 4, Charge: 2}}, keys)
}

func TestGasStoreStoppingTable(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.AddGas("helium", 4.002))

	// Rows inserted out of order come back sorted by energy.
	points := []StoppingPoint{
		{Energy: 10, Stopping: 20, Range: 30},
		{Energy: 1, Stopping: 2, Range: 3},
		{Energy: 5, Stopping: 10, Range: 15},
	}
	require.NoError(t, store.AddStoppingPoints("helium", 4, 2, points))

	table, err := store.StoppingTable("helium", 4, 2)
	require.NoError(t, err)
	require.Equal(t, []StoppingPoint{
		{Energy: 1, Stopping: 2, Range: 3},
		{Energy: 5, Stopping: 10, Range: 15},
		{Energy: 10, Stopping: 20, Range: 30},
	}, table)

	var unknown *ErrUnknownProjectile
	_, err = store.StoppingTable("helium", 3, 1)
	require.ErrorAs(t, err, &unknown)
}
