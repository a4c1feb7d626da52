package particle

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed particles.yaml
var defaultCatalogYAML []byte

// Catalog is the set of known particle species.
type Catalog struct {
	types []*Type
	byPDG map[PdgCode]*Type
}

type catalogFile struct {
	Particles []speciesEntry `yaml:"particles"`
}

type speciesEntry struct {
	Name         string       `yaml:"name"`
	PDG          int32        `yaml:"pdg"`
	Mass         float64      `yaml:"mass"`
	Width        float64      `yaml:"width"`
	Spin         int          `yaml:"spin"`
	Charge       int          `yaml:"charge"`
	Baryon       int          `yaml:"baryon"`
	Antiparticle bool         `yaml:"antiparticle"`
	AntiName     string       `yaml:"anti_name"`
	Decays       []decayEntry `yaml:"decays"`
}

type decayEntry struct {
	Products [2]int32 `yaml:"products"`
	BR       float64  `yaml:"br"`
	L        int      `yaml:"l"`
}

// DefaultCatalog parses the embedded species list.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalogYAML(defaultCatalogYAML)
}

// LoadCatalog reads a species list from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read particle catalog %s: %w", path, err)
	}
	c, err := ParseCatalogYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse particle catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalogYAML builds a catalog from YAML bytes and validates it.
func ParseCatalogYAML(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	if len(file.Particles) == 0 {
		return nil, fmt.Errorf("catalog defines no particles")
	}

	c := &Catalog{byPDG: make(map[PdgCode]*Type)}
	var generated []*Type
	for _, e := range file.Particles {
		if err := validateEntry(e); err != nil {
			return nil, err
		}
		t := e.toType()
		if err := c.add(t); err != nil {
			return nil, err
		}
		if e.Antiparticle {
			anti := conjugate(t, e.AntiName)
			if err := c.add(anti); err != nil {
				return nil, err
			}
			generated = append(generated, anti)
		}
	}

	// decays of generated antiparticles are conjugated once every code is known
	for _, t := range generated {
		for i := range t.Decays {
			for j, p := range t.Decays[i].Products {
				if _, ok := c.byPDG[-p]; ok {
					t.Decays[i].Products[j] = -p
				}
			}
		}
	}

	for _, t := range c.types {
		t.products = make([][2]*Type, len(t.Decays))
		for i, d := range t.Decays {
			for j, code := range d.Products {
				p, ok := c.byPDG[code]
				if !ok {
					return nil, fmt.Errorf("%s: decay product %s is not in the catalog", t.Name, code)
				}
				t.products[i][j] = p
			}
		}
	}

	visiting := make(map[*Type]bool)
	for _, t := range c.types {
		if _, err := resolveMinMass(t, visiting); err != nil {
			return nil, err
		}
	}
	for _, t := range c.types {
		t.normalize()
	}
	return c, nil
}

// Find looks a species up by code.
func (c *Catalog) Find(code PdgCode) (*Type, error) {
	t, ok := c.byPDG[code]
	if !ok {
		return nil, fmt.Errorf("unknown particle species %s", code)
	}
	return t, nil
}

// Lookup resolves a species by name ("p", "pi-") or by PDG code ("2212").
func (c *Catalog) Lookup(ref string) (*Type, error) {
	ref = strings.TrimSpace(ref)
	if code, err := strconv.ParseInt(ref, 10, 32); err == nil {
		return c.Find(PdgCode(code))
	}
	for _, t := range c.types {
		if t.Name == ref {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unknown particle species %q", ref)
}

// All returns the species in catalog order.
func (c *Catalog) All() []*Type {
	return c.types
}

// Antiparticle returns the charge conjugate of t, or t itself when it is its
// own antiparticle.
func (c *Catalog) Antiparticle(t *Type) *Type {
	if anti, ok := c.byPDG[-t.PDG]; ok {
		return anti
	}
	return t
}

func (c *Catalog) add(t *Type) error {
	if _, dup := c.byPDG[t.PDG]; dup {
		return fmt.Errorf("duplicate particle code %s (%s)", t.PDG, t.Name)
	}
	c.byPDG[t.PDG] = t
	c.types = append(c.types, t)
	return nil
}

func validateEntry(e speciesEntry) error {
	if e.Name == "" {
		return fmt.Errorf("particle %d: name cannot be empty", e.PDG)
	}
	if e.PDG == 0 {
		return fmt.Errorf("particle %s: pdg code cannot be zero", e.Name)
	}
	if e.Mass <= 0 {
		return fmt.Errorf("particle %s: mass must be positive, got %f", e.Name, e.Mass)
	}
	if e.Width < 0 {
		return fmt.Errorf("particle %s: width cannot be negative", e.Name)
	}
	if e.Spin < 0 {
		return fmt.Errorf("particle %s: spin cannot be negative", e.Name)
	}
	if e.Width >= widthCutoff && len(e.Decays) == 0 {
		return fmt.Errorf("particle %s: unstable species needs decay modes", e.Name)
	}
	if len(e.Decays) > 0 {
		sum := 0.0
		for _, d := range e.Decays {
			if d.BR < 0 {
				return fmt.Errorf("particle %s: branching ratio cannot be negative", e.Name)
			}
			sum += d.BR
		}
		if math.Abs(sum-1) > 1e-3 {
			return fmt.Errorf("particle %s: branching ratios sum to %f, expected 1", e.Name, sum)
		}
	}
	return nil
}

func (e speciesEntry) toType() *Type {
	t := &Type{
		Name:         e.Name,
		PDG:          PdgCode(e.PDG),
		Mass:         e.Mass,
		Width:        e.Width,
		Spin:         e.Spin,
		Charge:       e.Charge,
		BaryonNumber: e.Baryon,
	}
	for _, d := range e.Decays {
		t.Decays = append(t.Decays, DecayMode{
			Products:       [2]PdgCode{PdgCode(d.Products[0]), PdgCode(d.Products[1])},
			BranchingRatio: d.BR,
			L:              d.L,
		})
	}
	return t
}

func conjugate(t *Type, name string) *Type {
	if name == "" {
		name = "anti-" + t.Name
	}
	anti := &Type{
		Name:         name,
		PDG:          -t.PDG,
		Mass:         t.Mass,
		Width:        t.Width,
		Spin:         t.Spin,
		Charge:       -t.Charge,
		BaryonNumber: -t.BaryonNumber,
		Decays:       make([]DecayMode, len(t.Decays)),
	}
	copy(anti.Decays, t.Decays)
	return anti
}

func resolveMinMass(t *Type, visiting map[*Type]bool) (float64, error) {
	if t.minMass > 0 {
		return t.minMass, nil
	}
	if t.IsStable() {
		t.minMass = t.Mass
		return t.minMass, nil
	}
	if visiting[t] {
		return 0, fmt.Errorf("%s: cyclic decay chain", t.Name)
	}
	visiting[t] = true
	defer delete(visiting, t)

	lowest := math.Inf(1)
	for _, prods := range t.products {
		sum := 0.0
		for _, p := range prods {
			m, err := resolveMinMass(p, visiting)
			if err != nil {
				return 0, err
			}
			sum += m
		}
		lowest = math.Min(lowest, sum)
	}
	t.minMass = lowest
	return lowest, nil
}
