package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/commodity-forecast/internal/config"
	"github.com/iwvelando/commodity-forecast/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address     string               `yaml:"address"`
	Config      string               `yaml:"config"`
	ReadTimeout string               `yaml:"readTimeout"`
	Logging     config.LoggingConfig `yaml:"logging"`
	readTimeout time.Duration
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Address:     constants.DefaultServerAddress,
		Config:      constants.DefaultConfigFile,
		ReadTimeout: defaultReadTimeout().String(),
		Logging:     config.LoggingConfig{},
		readTimeout: defaultReadTimeout(),
	}
}

func defaultReadTimeout() time.Duration {
	return constants.DefaultReadTimeoutSeconds * time.Second
}

// ReadTimeoutDuration returns the parsed read timeout.
func (c *Config) ReadTimeoutDuration() time.Duration {
	return c.readTimeout
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.Config == "" {
		c.Config = constants.DefaultConfigFile
	}

	timeout := strings.TrimSpace(c.ReadTimeout)
	if timeout == "" {
		c.readTimeout = defaultReadTimeout()
		c.ReadTimeout = c.readTimeout.String()
		return nil
	}

	d, err := time.ParseDuration(timeout)
	if err != nil {
		return fmt.Errorf("invalid readTimeout %q: %w", c.ReadTimeout, err)
	}
	if d <= 0 {
		d = defaultReadTimeout()
	}
	c.readTimeout = d
	return nil
}
