package config

// Config represents the engine configuration
type Config struct {
	LogLevel      string        `yaml:"log_level"`
	Seed          int64         `yaml:"seed"`
	ParticlesFile string        `yaml:"particles_file,omitempty"`
	CollisionTerm CollisionTerm `yaml:"collision_term"`
	Server        Server        `yaml:"server"`
	Batch         *Batch        `yaml:"batch,omitempty"`
}

// CollisionTerm selects the reaction channels added to every action
type CollisionTerm struct {
	// ElasticCrossSection is a constant elastic cross section in mb;
	// negative selects the parametrization.
	ElasticCrossSection float64  `yaml:"elastic_cross_section"`
	Isotropic           bool     `yaml:"isotropic"`
	TwoToOne            bool     `yaml:"two_to_one"`
	Included2to2        []string `yaml:"included_2to2"`
	LowSNNCut           float64  `yaml:"low_snn_cut"`
	Strings             bool     `yaml:"strings"`
	StringFormationTime float64  `yaml:"string_formation_time"`
	NNbarTreatment      string   `yaml:"nnbar_treatment"`
}

// Server holds the listen addresses of scatterd
type Server struct {
	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"`
	// CallbackURL receives a POST when a batch finishes. "{run_id}" is
	// replaced by the run ID.
	CallbackURL    string `yaml:"callback_url,omitempty"`
	CallbackSecret string `yaml:"callback_secret,omitempty"`
}

// Default returns the configuration used for keys missing from a file
func Default() Config {
	return Config{
		LogLevel: "info",
		CollisionTerm: CollisionTerm{
			ElasticCrossSection: -1,
			TwoToOne:            true,
			Included2to2:        []string{"all"},
			LowSNNCut:           1.98,
			Strings:             true,
			StringFormationTime: 1.0,
			NNbarTreatment:      "no annihilation",
		},
		Server: Server{
			GRPCAddr: ":9090",
			HTTPAddr: ":8080",
		},
	}
}
