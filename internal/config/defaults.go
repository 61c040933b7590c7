package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Search.DefaultK == 0 {
		cfg.Search.DefaultK = 10
	}
	if cfg.Search.MaxK == 0 {
		cfg.Search.MaxK = 100
	}
	if cfg.Search.ParallelThreshold == 0 {
		cfg.Search.ParallelThreshold = 256
	}
	if cfg.Seed.Extensions == nil {
		cfg.Seed.Extensions = []string{".json"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Seed.Directories) > 0 && cfg.Seed.Recursive == nil {
		t := true
		cfg.Seed.Recursive = &t
	}
}
