package evtdata

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"
	"gonum.org/v1/gonum/interp"
)

// ProjectileKey identifies a projectile species by mass and charge number.
type ProjectileKey struct {
	Mass   int
	Charge int
}

func (k ProjectileKey) String() string {
	return fmt.Sprintf("A=%d Z=%d", k.Mass, k.Charge)
}

// projectileSplines are monotone (Fritsch-Butland) interpolants over one
// projectile's reference table, already scaled to this gas's pressure.
type projectileSplines struct {
	dedx    interp.FritschButland // energy (MeV) -> stopping power (MeV/m)
	rng     interp.FritschButland // energy (MeV) -> range (m)
	inverse interp.FritschButland // range (m) -> energy (MeV)
}

// InterpolatedGas interpolates a named reference dataset of per-projectile
// (energy, stopping power, range) tables. Reference tables hold mass
// stopping power in MeV/(g/cm^2) and mass range in g/cm^2; both are scaled
// by the density at this gas's pressure when the splines are built, so a gas
// constructed at a partial pressure directly yields partial stopping powers.
type InterpolatedGas struct {
	Name      string
	MolarMass float64 // g/mol
	Pressure  float64 // Torr

	splines map[ProjectileKey]*projectileSplines
}

var _ EnergyLossModel = (*InterpolatedGas)(nil)

// NewInterpolatedGas loads the named dataset from the store and builds the
// splines for every tabulated projectile.
func NewInterpolatedGas(store *GasStore, name string, pressure float64) (*InterpolatedGas, error) {
	molarMass, err := store.MolarMass(name)
	if err != nil {
		return nil, err
	}

	gas := &InterpolatedGas{
		Name:      name,
		MolarMass: molarMass,
		Pressure:  pressure,
		splines:   make(map[ProjectileKey]*projectileSplines),
	}
	density := gas.Density()

	projectiles, err := store.Projectiles(name)
	if err != nil {
		return nil, err
	}

	for _, key := range projectiles {
		table, err := store.StoppingTable(name, key.Mass, key.Charge)
		if err != nil {
			return nil, err
		}
		if len(table) < 2 {
			return nil, fmt.Errorf("gas %q: projectile %v has only %d reference points", name, key, len(table))
		}

		energies := make([]float64, len(table))
		dedx := make([]float64, len(table))
		ranges := make([]float64, len(table))
		for i, point := range table {
			energies[i] = point.Energy
			dedx[i] = point.Stopping * density * 100
			ranges[i] = point.Range / (density * 100)
		}

		// The spline fitters require strictly increasing abscissae and
		// panic otherwise, so reject bad tables up front.
		for i := 1; i < len(table); i++ {
			if energies[i] <= energies[i-1] {
				return nil, &ErrBadTable{
					Gas:        name,
					Projectile: key,
					Details:    fmt.Sprintf("energies not strictly increasing at row %d (%g after %g)", i, energies[i], energies[i-1]),
				}
			}
			if ranges[i] <= ranges[i-1] {
				return nil, &ErrBadTable{
					Gas:        name,
					Projectile: key,
					Details:    fmt.Sprintf("ranges not strictly increasing at row %d", i),
				}
			}
		}

		s := &projectileSplines{}
		if err := s.dedx.Fit(energies, dedx); err != nil {
			return nil, fmt.Errorf("gas %q: fitting stopping-power spline for %v: %w", name, key, err)
		}
		if err := s.rng.Fit(energies, ranges); err != nil {
			return nil, fmt.Errorf("gas %q: fitting range spline for %v: %w", name, key, err)
		}
		if err := s.inverse.Fit(ranges, energies); err != nil {
			return nil, fmt.Errorf("gas %q: fitting inverse-range spline for %v: %w", name, key, err)
		}
		gas.splines[key] = s
	}
	return gas, nil
}

// Density returns the gas density in g/cm^3.
func (g *InterpolatedGas) Density() float64 {
	return g.Pressure / 760 * g.MolarMass / 24040
}

// Projectiles returns the species with tabulated data, ordered by mass then
// charge.
func (g *InterpolatedGas) Projectiles() []ProjectileKey {
	keys := maps.Keys(g.splines)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Mass != keys[j].Mass {
			return keys[i].Mass < keys[j].Mass
		}
		return keys[i].Charge < keys[j].Charge
	})
	return keys
}

func (g *InterpolatedGas) lookup(projMass, projCharge int) (*projectileSplines, error) {
	s, ok := g.splines[ProjectileKey{Mass: projMass, Charge: projCharge}]
	if !ok {
		return nil, &ErrUnknownProjectile{Mass: projMass, Charge: projCharge}
	}
	return s, nil
}

// EnergyLoss returns the interpolated stopping power in MeV/m.
func (g *InterpolatedGas) EnergyLoss(en float64, projMass, projCharge int) (float64, error) {
	s, err := g.lookup(projMass, projCharge)
	if err != nil {
		return 0, err
	}
	return s.dedx.Predict(en), nil
}

// Range returns the interpolated projected range in m.
func (g *InterpolatedGas) Range(en float64, projMass, projCharge int) (float64, error) {
	s, err := g.lookup(projMass, projCharge)
	if err != nil {
		return 0, err
	}
	return s.rng.Predict(en), nil
}

// InverseRange returns the kinetic energy in MeV a projectile must have to
// travel the given range.
func (g *InterpolatedGas) InverseRange(rng float64, projMass, projCharge int) (float64, error) {
	s, err := g.lookup(projMass, projCharge)
	if err != nil {
		return 0, err
	}
	return s.inverse.Predict(rng), nil
}
