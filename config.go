package relay

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nordgate/relay/internal/errs"
)

// Config carries pool-wide settings, mirroring the teacher's
// PoolConfig (MaxWorkers, CheckInterval, IdleTimeout) plus a LogLevel
// field for the ambient logging stack.
type Config struct {
	MaxWorkers    int           `yaml:"max_workers"`
	CheckInterval time.Duration `yaml:"check_interval"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	LogLevel      string        `yaml:"log_level"`
}

// withDefaults fills zero-value fields the same way the teacher's
// CreatePool defaults a zero-value PoolConfig.
func (c Config) withDefaults() Config {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 1
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 100 * time.Hour
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c
}

// LoadConfig reads a YAML file into a Config, applying the same
// defaulting rules as NewPool. It exists for embedders that want to
// externalize pool settings; the core engine never reads a file
// itself.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, errs.ErrEmptyConfigPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("relay: read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("relay: parse config %s: %w", path, err)
	}

	return cfg.withDefaults(), nil
}
