package evtdata

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// GasFraction names one mixture component and its partial-pressure fraction.
type GasFraction struct {
	Name     string
	Fraction float64
}

// Inverse-range splines are fit by sampling the mixture's own range function
// over this log-spaced energy grid.
const (
	inverseRangePoints = 500
	inverseRangeEmin   = 1e-3 // MeV
	inverseRangeEmax   = 1e3  // MeV
)

// InterpolatedGasMixture combines interpolated gases under Bragg's
// additivity rule: each component is built at its partial pressure, so the
// mixture stopping power is the plain sum of the component stopping powers.
type InterpolatedGasMixture struct {
	Pressure   float64 // total pressure, Torr
	components []*InterpolatedGas
	inverse    map[ProjectileKey]*interp.FritschButland
}

var _ EnergyLossModel = (*InterpolatedGasMixture)(nil)

// NewInterpolatedGasMixture builds a mixture at the given total pressure from
// (gas name, fraction) pairs. The fractions must sum to 1.0; every component
// is loaded from the store at pressure*fraction. Construction also fits an
// inverse-range spline for every projectile supported by all components.
func NewInterpolatedGasMixture(store *GasStore, pressure float64, fractions []GasFraction) (*InterpolatedGasMixture, error) {
	sum := 0.0
	for _, f := range fractions {
		sum += f.Fraction
	}
	if math.Abs(sum-1) > 1e-6 {
		return nil, &ErrBadMixture{Sum: sum}
	}

	mixture := &InterpolatedGasMixture{
		Pressure: pressure,
		inverse:  make(map[ProjectileKey]*interp.FritschButland),
	}
	for _, f := range fractions {
		component, err := NewInterpolatedGas(store, f.Name, pressure*f.Fraction)
		if err != nil {
			return nil, err
		}
		mixture.components = append(mixture.components, component)
	}

	for _, key := range mixture.Projectiles() {
		if err := mixture.fitInverseRange(key); err != nil {
			return nil, err
		}
	}
	return mixture, nil
}

// Projectiles returns the species supported by every component, ordered by
// mass then charge.
func (m *InterpolatedGasMixture) Projectiles() []ProjectileKey {
	counts := make(map[ProjectileKey]int)
	for _, component := range m.components {
		for _, key := range component.Projectiles() {
			counts[key]++
		}
	}
	var keys []ProjectileKey
	for key, n := range counts {
		if n == len(m.components) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Mass != keys[j].Mass {
			return keys[i].Mass < keys[j].Mass
		}
		return keys[i].Charge < keys[j].Charge
	})
	return keys
}

// EnergyLoss sums the component stopping powers. Each component already
// reflects its partial pressure, so the sum follows Bragg additivity.
func (m *InterpolatedGasMixture) EnergyLoss(en float64, projMass, projCharge int) (float64, error) {
	total := 0.0
	for _, component := range m.components {
		dedx, err := component.EnergyLoss(en, projMass, projCharge)
		if err != nil {
			return 0, err
		}
		total += dedx
	}
	return total, nil
}

// Range sums the component ranges and divides by 4. This is a rough
// approximation of the mixture range, not an exact result; it is kept as-is
// because downstream numbers were tuned against it.
func (m *InterpolatedGasMixture) Range(en float64, projMass, projCharge int) (float64, error) {
	total := 0.0
	for _, component := range m.components {
		r, err := component.Range(en, projMass, projCharge)
		if err != nil {
			return 0, err
		}
		total += r
	}
	return total / 4, nil
}

// InverseRange evaluates the inverse-range spline fit at construction.
func (m *InterpolatedGasMixture) InverseRange(rng float64, projMass, projCharge int) (float64, error) {
	s, ok := m.inverse[ProjectileKey{Mass: projMass, Charge: projCharge}]
	if !ok {
		return 0, &ErrUnknownProjectile{Mass: projMass, Charge: projCharge}
	}
	return s.Predict(rng), nil
}

func (m *InterpolatedGasMixture) fitInverseRange(key ProjectileKey) error {
	energies := logspace(inverseRangeEmin, inverseRangeEmax, inverseRangePoints)
	sampled := make([]float64, len(energies))
	for i, en := range energies {
		r, err := m.Range(en, key.Mass, key.Charge)
		if err != nil {
			return err
		}
		sampled[i] = r
	}

	// Component splines clamp to a constant outside their table domain, so
	// the sampled range flattens where the grid runs past the reference
	// tables. The fitter requires strictly increasing ranges: trim the
	// leading plateau to its last point and drop any later sample that does
	// not increase.
	start := 0
	for start+1 < len(sampled) && sampled[start+1] <= sampled[start] {
		start++
	}
	ranges := []float64{sampled[start]}
	kept := []float64{energies[start]}
	for i := start + 1; i < len(sampled); i++ {
		if sampled[i] <= ranges[len(ranges)-1] {
			continue
		}
		ranges = append(ranges, sampled[i])
		kept = append(kept, energies[i])
	}
	if len(ranges) < 2 {
		return fmt.Errorf("fitting inverse-range spline for %v: only %d distinct range values over the sampling grid", key, len(ranges))
	}

	var s interp.FritschButland
	if err := s.Fit(ranges, kept); err != nil {
		return fmt.Errorf("fitting inverse-range spline for %v: %w", key, err)
	}
	m.inverse[key] = &s
	return nil
}

// logspace returns n points spaced evenly on a log scale between min and max
// inclusive.
func logspace(min, max float64, n int) []float64 {
	points := make([]float64, n)
	lmin := math.Log10(min)
	lmax := math.Log10(max)
	for i := range points {
		points[i] = math.Pow(10, lmin+(lmax-lmin)*float64(i)/float64(n-1))
	}
	return points
}
