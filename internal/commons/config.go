package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"stockpos/internal/config"
)

// LoadConfig reads the YAML file at path over the defaults, then applies
// environment overrides. Keys missing from the file keep their defaults.
func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := config.Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config.FromEnv(cfg)
}
