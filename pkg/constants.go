package evtdata

import "math"

// Physical constants, SI unless noted otherwise.
const (
	nAvo    = 6.02214129e23   // Avogadro's number
	cLgt    = 2.99792458e8    // speed of light, m/s
	eChg    = 1.602176565e-19 // elementary charge, C
	eps0    = 8.854187817e-12 // vacuum permittivity, F/m
	eMc2    = 0.510998928     // electron rest energy, MeV
	pMc2    = 938.272046      // proton rest energy, MeV
	mevToKg = 1.782661845e-30 // 1 MeV/c^2 in kg
)

// Beta returns the relativistic beta of a projectile with kinetic energy en
// and rest energy mass, both in MeV.
func Beta(en, mass float64) float64 {
	gamma := 1 + en/mass
	return math.Sqrt(1 - 1/(gamma*gamma))
}
