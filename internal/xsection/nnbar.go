package xsection

import (
	"math"

	"github.com/lgpang/smash/internal/collision"
	"github.com/lgpang/smash/pkg/kinematics"
	"github.com/lgpang/smash/pkg/particle"
)

// NNbarAnnihilation is the N Nbar -> rho0 h1(1170) branch carrying whatever
// the p pbar total cross section leaves after the other channels.
func NNbarAnnihilation(species Species, sqrtS, otherChannels float64) (collision.Branch, error) {
	rho, err := species.Find(particle.Rho0)
	if err != nil {
		return collision.Branch{}, err
	}
	h1, err := species.Find(particle.H1)
	if err != nil {
		return collision.Branch{}, err
	}
	w := math.Max(0, PPbarTotal(sqrtS*sqrtS)-otherChannels)
	return collision.NewBranch(collision.TwoToTwo, w, h1, rho), nil
}

// NNbarCreation lists the rho0 h1(1170) -> p pbar and n nbar branches
// obtained from annihilation by detailed balance. Below 2 m_N it is empty.
func NNbarCreation(species Species, a, b *particle.Type, sqrtS, pcm float64) ([]collision.Branch, error) {
	if sqrtS < 2*kinematics.NucleonMass {
		return nil, nil
	}
	s := sqrtS * sqrtS
	annihilation := math.Max(0, PPbarTotal(s)-PPbarElastic(s))
	var out []collision.Branch
	for _, code := range []particle.PdgCode{particle.Proton, particle.Neutron} {
		n, err := species.Find(code)
		if err != nil {
			return nil, err
		}
		nbar, err := species.Find(-code)
		if err != nil {
			return nil, err
		}
		w := DetailedBalanceFactor(sqrtS, pcm, a, b, n, nbar) * annihilation
		out = append(out, collision.NewBranch(collision.TwoToTwo, w, n, nbar))
	}
	return out, nil
}

// DetailedBalanceFactor converts a C D -> A B cross section into A B -> C D:
//
//	(2J_C+1)(2J_D+1)/((2J_A+1)(2J_B+1)) * sym_AB/sym_CD * p_CD^2/(p_AB <p_AB>)
//
// where sym is 2 for identical species, p_AB is the actual incoming CM
// momentum and <p_AB> the incoming momentum folded over the spectral
// functions of A and B.
func DetailedBalanceFactor(sqrtS, pcm float64, a, b, c, d *particle.Type) float64 {
	spin := float64((c.Spin+1)*(d.Spin+1)) / float64((a.Spin+1)*(b.Spin+1))
	sym := 1.0
	if a == b {
		sym *= 2
	}
	if c == d {
		sym /= 2
	}
	folded := EffectiveMomentum(sqrtS, a, b)
	if pcm <= 0 || folded <= 0 {
		return 0
	}
	return spin * sym * kinematics.PCMSqr(sqrtS, c.Mass, d.Mass) / (pcm * folded)
}
