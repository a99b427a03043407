// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/iwvelando/commodity-forecast/internal/accuracy"
	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/pkg/constants"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. COMMODITY_FORECAST_DATA_OBSERVATIONS.
const EnvPrefix = "COMMODITY_FORECAST"

// Configuration holds all configuration for commodity-forecast.
type Configuration struct {
	Data     DataConfig     `yaml:"data"`
	Accuracy AccuracyConfig `yaml:"accuracy,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
}

// DataConfig names the input files and how they are shaped.
type DataConfig struct {
	Shape        string `yaml:"shape"`             // tagged-split-files, tagged-single-file, tagged-two-files
	Observations string `yaml:"observations"`      // price file
	Metrics      string `yaml:"metrics,omitempty"` // reported MAPE file
	Sheet        string `yaml:"sheet,omitempty"`        // XLSX worksheet of observations, first sheet when empty
	MetricsSheet string `yaml:"metricsSheet,omitempty"` // XLSX worksheet of metrics, first sheet when empty
}

// AccuracyConfig holds options of the MAPE computation.
type AccuracyConfig struct {
	ZeroActual string `yaml:"zeroActual,omitempty"` // exclude, include
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data.shape", constants.ShapeTaggedSplitFiles)
	v.SetDefault("data.observations", "")
	v.SetDefault("data.metrics", "")
	v.SetDefault("data.sheet", "")
	v.SetDefault("data.metricsSheet", "")
	v.SetDefault("accuracy.zeroActual", constants.ZeroActualExclude)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Relative data paths are resolved against the
// directory of the configuration file.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	configuration, err := decode(v)
	if err != nil {
		return nil, err
	}
	configuration.ResolvePaths(filepath.Dir(configPath))
	return configuration, nil
}

// LoadConfigurationFromReader loads YAML configuration from r. Data paths
// are left as given.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// ResolvePaths makes relative data paths relative to baseDir.
func (c *Configuration) ResolvePaths(baseDir string) {
	c.Data.Observations = resolve(baseDir, c.Data.Observations)
	c.Data.Metrics = resolve(baseDir, c.Data.Metrics)
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Source converts the data section into a dataset.Source.
func (c *Configuration) Source() (dataset.Source, error) {
	shape, err := dataset.ParseShape(c.Data.Shape)
	if err != nil {
		return dataset.Source{}, err
	}
	if c.Data.Observations == "" {
		return dataset.Source{}, fmt.Errorf("data.observations is required")
	}
	if shape.UsesMetrics() && c.Data.Metrics == "" {
		return dataset.Source{}, fmt.Errorf("data.metrics is required for shape %s", shape)
	}
	return dataset.Source{
		Shape:        shape,
		Observations: c.Data.Observations,
		Metrics:      c.Data.Metrics,
		Sheet:        c.Data.Sheet,
		MetricsSheet: c.Data.MetricsSheet,
	}, nil
}

// Policy returns the configured zero-actual policy.
func (c *Configuration) Policy() (accuracy.ZeroActualPolicy, error) {
	return accuracy.ParsePolicy(c.Accuracy.ZeroActual)
}

// Validate reports the first configuration error that prevents a load.
func (c *Configuration) Validate() error {
	if _, err := c.Source(); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	shape, err := dataset.ParseShape(c.Data.Shape)
	if err == nil && !shape.UsesMetrics() && c.Data.Metrics != "" {
		warnings = append(warnings, fmt.Sprintf("data.metrics %s is ignored for shape %s", c.Data.Metrics, shape))
	}

	if c.Data.Sheet != "" && !isSpreadsheet(c.Data.Observations) {
		warnings = append(warnings, fmt.Sprintf("data.sheet %q is ignored for a non-XLSX observations file", c.Data.Sheet))
	}
	if c.Data.MetricsSheet != "" && !isSpreadsheet(c.Data.Metrics) {
		warnings = append(warnings, fmt.Sprintf("data.metricsSheet %q is ignored for a non-XLSX metrics file", c.Data.MetricsSheet))
	}

	if strings.EqualFold(strings.TrimSpace(c.Accuracy.ZeroActual), constants.ZeroActualInclude) {
		warnings = append(warnings, "accuracy.zeroActual is include: series with a zero actual price report a non-finite MAPE")
	}

	return warnings
}

func isSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}
