package kinematics

// Units follow the transport convention: GeV for energies and momenta,
// fm for lengths and times, mb for cross sections.
const (
	// HBarC is the GeV <-> fm conversion factor.
	HBarC = 0.197327053
	// FmSqrToMb converts fm^2 to mb.
	FmSqrToMb = 0.1
	// ReallySmall is the numerical noise floor for weights and momenta.
	ReallySmall = 1.0e-6
	// NucleonMass in GeV.
	NucleonMass = 0.938
	// PionMass in GeV.
	PionMass = 0.138
)
