package config

// Batch describes a run of identical collisions, one pair at a fixed energy
type Batch struct {
	// Projectile and Target are species names ("p", "pi-") or PDG codes.
	Projectile string  `yaml:"projectile"`
	Target     string  `yaml:"target"`
	SqrtS      float64 `yaml:"sqrt_s"` // GeV
	Events     int     `yaml:"events"`
	Time       float64 `yaml:"time,omitempty"` // fm
	// Arrival spreads collision times over Window fm after Time: fixed,
	// constant, uniform, or poisson. Empty means fixed.
	Arrival string  `yaml:"arrival,omitempty"`
	Window  float64 `yaml:"window,omitempty"`
}
