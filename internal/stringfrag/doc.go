// Package stringfrag holds the reference string-fragmentation collaborators
// of the scattering engine: a hard-event generator driven by beam species,
// collision energy and seed, and a soft string process that samples
// diffractive and soft non-diffractive excitations.
//
// Both produce hadrons in the collision center-of-momentum frame. Final
// states conserve charge, baryon number and four-momentum; hadron momenta are
// distributed with limited transverse momentum along the collision axis and
// rescaled to the available energy.
//
// Neither collaborator is safe for concurrent use.
package stringfrag
