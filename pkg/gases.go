package evtdata

import "math"

// EnergyLossModel is the contract shared by every gas variant. Energies are
// kinetic energies in MeV, projectiles are identified by mass number and
// charge number, stopping powers come back in MeV/m and ranges in m.
//
// A variant that has no fit or table for the requested projectile returns
// ErrUnknownProjectile rather than an approximate answer.
type EnergyLossModel interface {
	EnergyLoss(en float64, projMass, projCharge int) (float64, error)
	Range(en float64, projMass, projCharge int) (float64, error)
	InverseRange(rng float64, projMass, projCharge int) (float64, error)
}

// GenericGas describes a gas in the detector and models its stopping power
// with the Bethe formula. Empirical variants embed it and override
// EnergyLoss with a fit.
type GenericGas struct {
	MolarMass    float64 // g/mol
	NumElectrons int     // electrons per molecule, or the total Z
	MeanExcPot   float64 // mean excitation potential, eV
	Pressure     float64 // Torr
}

var _ EnergyLossModel = (*GenericGas)(nil)

func NewGenericGas(molarMass float64, numElectrons int, meanExcPot, pressure float64) *GenericGas {
	return &GenericGas{
		MolarMass:    molarMass,
		NumElectrons: numElectrons,
		MeanExcPot:   meanExcPot,
		Pressure:     pressure,
	}
}

// Density returns the gas density in g/cm^3.
func (g *GenericGas) Density() float64 {
	return g.Pressure / 760 * g.MolarMass / 24040
}

// ElectronDensity returns the electron density per m^3.
func (g *GenericGas) ElectronDensity() float64 {
	return nAvo * float64(g.NumElectrons) * g.Density() / g.MolarMass * 1e6
}

// EnergyLoss returns the stopping power of the gas from the Bethe formula.
func (g *GenericGas) EnergyLoss(en float64, projMass, projCharge int) (float64, error) {
	beta := Beta(en, float64(projMass)*pMc2)
	return bethe(beta, projCharge, g.ElectronDensity(), g.MeanExcPot), nil
}

// Range is only tabulated for the interpolated variants.
func (g *GenericGas) Range(en float64, projMass, projCharge int) (float64, error) {
	return 0, &ErrNoRangeData{Gas: "generic"}
}

func (g *GenericGas) InverseRange(rng float64, projMass, projCharge int) (float64, error) {
	return 0, &ErrNoRangeData{Gas: "generic"}
}

// bethe evaluates the Bethe stopping-power formula for a projectile with the
// given beta and charge number in a medium with electron density ne (m^-3)
// and mean excitation potential excEn (eV). The result is in MeV/m.
func bethe(beta float64, z int, ne, excEn float64) float64 {
	excEn *= 1e-6 // eV -> MeV
	betaSq := beta * beta

	if betaSq == 0 {
		// The particle has stopped, so the dedx should be infinite.
		return math.Inf(1)
	}
	if betaSq == 1 {
		return 0
	}

	frnt := ne * float64(z*z) * math.Pow(eChg, 4) /
		(eMc2 * mevToKg * cLgt * cLgt * betaSq * 4 * math.Pi * eps0 * eps0)
	lnt := math.Log(2 * eMc2 * betaSq / (excEn * (1 - betaSq)))
	dedx := frnt * (lnt - betaSq) // J/m

	return dedx / eChg * 1e-6 // MeV/m
}

// HeliumGas is pure helium-4 with the Bethe stopping power replaced by an
// empirical fit. The fit data comes from the AT-TPC Fortran simulation and
// may originally be from Northcliffe and Schilling (1970).
type HeliumGas struct {
	GenericGas
}

func NewHeliumGas(pressure float64) *HeliumGas {
	return &HeliumGas{GenericGas{MolarMass: 4, NumElectrons: 2, MeanExcPot: 41.8, Pressure: pressure}}
}

// EnergyLoss returns the fitted stopping power. Supported projectiles are
// protons and helium-4 ions.
func (g *HeliumGas) EnergyLoss(en float64, projMass, projCharge int) (float64, error) {
	var result float64
	switch {
	case projMass == 1 && projCharge == 1:
		// Protons in helium gas.
		result = 6.5*(1/math.Pow(en, 0.83))*(1/(20+1.6/math.Pow(en, 1.3))) +
			0.2*math.Exp(-30*(en-0.1)*(en-0.1))
	case projMass == 4 && projCharge == 2:
		// Helium ions in helium gas. Only good down to K.E. = 10 keV.
		result = 10*(1/math.Pow(en, 0.83))*(1/(2.5+1.6/math.Sqrt(en))) +
			0.05*math.Exp(-(en-0.5)*(en-0.5))
	default:
		return 0, &ErrUnknownProjectile{Mass: projMass, Charge: projCharge}
	}

	// The fit is in MeV/(mg/cm^2), so convert and multiply by density.
	return result * 1000 * g.Density() * 100, nil
}

// HeCO2Gas is a mixture of 90 percent helium and 10 percent carbon dioxide,
// with the stopping power fit to data from the NIST ASTAR tables. The
// electron density properties inherited from GenericGas are not meaningful
// for this gas.
type HeCO2Gas struct {
	GenericGas
}

func NewHeCO2Gas(pressure float64) *HeCO2Gas {
	molarMass := 4.002*0.9 + 44.01*0.1
	return &HeCO2Gas{GenericGas{MolarMass: molarMass, NumElectrons: 2, MeanExcPot: 41.8, Pressure: pressure}}
}

var heco2AlphaParams = [8]float64{
	3.96952385e+02, 9.33364832e-01, 9.59137201e-02, 8.82262274e-02,
	1.51501228e+00, -1.82205350e+03, 9.93911292e+03, -1.81747643e-01,
}

func heco2FitFunc(en float64, p [8]float64) float64 {
	a, b, c, d, e, f, g, h := p[0], p[1], p[2], p[3], p[4], p[5], p[6], p[7]
	return a*(1/math.Pow(en, b))*(1/(c+d/math.Pow(en, e))) + f*math.Exp(-g*(en-h)*(en-h))
}

// EnergyLoss returns the fitted stopping power. The only supported
// projectile is the helium-4 ion.
func (g *HeCO2Gas) EnergyLoss(en float64, projMass, projCharge int) (float64, error) {
	if projMass != 4 || projCharge != 2 {
		return 0, &ErrUnknownProjectile{Mass: projMass, Charge: projCharge}
	}
	// The fit is in MeV/(g/cm^2), so multiply by density.
	return heco2FitFunc(en, heco2AlphaParams) * g.Density() * 100, nil
}
