package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/commodity-forecast/internal/accuracy"
	"github.com/iwvelando/commodity-forecast/internal/dataset"
	"github.com/iwvelando/commodity-forecast/pkg/constants"
	"go.uber.org/zap"
)

const sampleConfig = `data:
  shape: tagged-split-files
  observations: forecast.csv
  metrics: mape.csv
accuracy:
  zeroActual: include
logging:
  level: debug
  format: console
output:
  format: csv
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Sample config file",
			configPath: writeConfig(t, sampleConfig),
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationResolvesPaths(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	dir := filepath.Dir(path)

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if want := filepath.Join(dir, "forecast.csv"); config.Data.Observations != want {
		t.Errorf("Observations = %q, want %q", config.Data.Observations, want)
	}
	if want := filepath.Join(dir, "mape.csv"); config.Data.Metrics != want {
		t.Errorf("Metrics = %q, want %q", config.Data.Metrics, want)
	}
	if config.Accuracy.ZeroActual != "include" {
		t.Errorf("ZeroActual = %q, want include", config.Accuracy.ZeroActual)
	}
	if config.Logging.Level != "debug" || config.Logging.Format != "console" {
		t.Errorf("Logging = %+v, want debug/console", config.Logging)
	}
	if config.Output.Format != "csv" {
		t.Errorf("Output.Format = %q, want csv", config.Output.Format)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	config, err := LoadConfigurationFromReader(strings.NewReader(`data:
  shape: tagged-single-file
  observations: /srv/data/comparison.xlsx
  sheet: Harga
  metricsSheet: MAPE
`))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	src, err := config.Source()
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}
	if src.Shape != dataset.ShapeTaggedSingleFile {
		t.Errorf("Shape = %q, want %q", src.Shape, dataset.ShapeTaggedSingleFile)
	}
	if src.Observations != "/srv/data/comparison.xlsx" || src.Sheet != "Harga" || src.MetricsSheet != "MAPE" {
		t.Errorf("Source() = %+v", src)
	}

	policy, err := config.Policy()
	if err != nil {
		t.Fatalf("Policy() error = %v", err)
	}
	if policy != accuracy.ExcludeZeroActual {
		t.Errorf("default policy = %v, want exclude", policy)
	}
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	t.Setenv("COMMODITY_FORECAST_DATA_OBSERVATIONS", "/override/forecast.csv")
	t.Setenv("COMMODITY_FORECAST_ACCURACY_ZEROACTUAL", "include")

	config, err := LoadConfigurationFromReader(strings.NewReader(`data:
  shape: tagged-split-files
  observations: forecast.csv
  metrics: mape.csv
`))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if config.Data.Observations != "/override/forecast.csv" {
		t.Errorf("Observations = %q, want environment override", config.Data.Observations)
	}
	if config.Accuracy.ZeroActual != "include" {
		t.Errorf("ZeroActual = %q, want environment override", config.Accuracy.ZeroActual)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    Configuration
		wantError string
	}{
		{
			name: "Split files",
			config: Configuration{Data: DataConfig{
				Shape: "tagged-split-files", Observations: "f.csv", Metrics: "m.csv",
			}},
		},
		{
			name: "Single file without metrics",
			config: Configuration{Data: DataConfig{
				Shape: "tagged-single-file", Observations: "f.csv",
			}},
		},
		{
			name: "Unknown shape",
			config: Configuration{Data: DataConfig{
				Shape: "pivoted", Observations: "f.csv",
			}},
			wantError: "unknown input shape",
		},
		{
			name: "Missing observations",
			config: Configuration{Data: DataConfig{
				Shape: "tagged-single-file",
			}},
			wantError: "data.observations is required",
		},
		{
			name: "Missing metrics",
			config: Configuration{Data: DataConfig{
				Shape: "tagged-two-files", Observations: "f.csv",
			}},
			wantError: "data.metrics is required",
		},
		{
			name: "Unknown policy",
			config: Configuration{
				Data:     DataConfig{Shape: "tagged-single-file", Observations: "f.csv"},
				Accuracy: AccuracyConfig{ZeroActual: "skip"},
			},
			wantError: "unknown zero-actual policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantError)
			}
		})
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	tests := []struct {
		name     string
		config   Configuration
		warnings int
	}{
		{
			name: "Clean",
			config: Configuration{Data: DataConfig{
				Shape: "tagged-split-files", Observations: "f.csv", Metrics: "m.csv",
			}},
			warnings: 0,
		},
		{
			name: "Ignored metrics file",
			config: Configuration{Data: DataConfig{
				Shape: "tagged-single-file", Observations: "f.csv", Metrics: "m.csv",
			}},
			warnings: 1,
		},
		{
			name: "Sheet on CSV input",
			config: Configuration{Data: DataConfig{
				Shape: "tagged-single-file", Observations: "f.csv", Sheet: "Sheet1",
			}},
			warnings: 1,
		},
		{
			name: "Metrics sheet on CSV metrics",
			config: Configuration{Data: DataConfig{
				Shape: "tagged-split-files", Observations: "f.xlsx", Metrics: "m.csv", MetricsSheet: "MAPE",
			}},
			warnings: 1,
		},
		{
			name: "Both sheets in one workbook",
			config: Configuration{Data: DataConfig{
				Shape: "tagged-split-files", Observations: "out.xlsx", Metrics: "out.xlsx",
				Sheet: "Peramalan", MetricsSheet: "MAPE",
			}},
			warnings: 0,
		},
		{
			name: "Sheet on XLSX input",
			config: Configuration{Data: DataConfig{
				Shape: "tagged-single-file", Observations: "f.xlsx", Sheet: "Sheet1",
			}},
			warnings: 0,
		},
		{
			name: "Zero actuals included",
			config: Configuration{
				Data:     DataConfig{Shape: "tagged-single-file", Observations: "f.csv"},
				Accuracy: AccuracyConfig{ZeroActual: "Include"},
			},
			warnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.config.ValidateConfiguration()
			if len(warnings) != tt.warnings {
				t.Errorf("ValidateConfiguration() = %v, want %d warnings", warnings, tt.warnings)
			}
		})
	}
}

func TestLoadConfigurationExample(t *testing.T) {
	config, err := LoadConfiguration(filepath.Join("..", "..", constants.ExampleConfigFile))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if warnings := config.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("unexpected warnings %v", warnings)
	}

	src, err := config.Source()
	if err != nil {
		t.Fatalf("Source() error = %v", err)
	}
	table, err := dataset.Load(zap.NewNop(), src)
	if err != nil {
		t.Fatalf("Load() of example data error = %v", err)
	}
	if len(table.Observations) != 6 {
		t.Errorf("expected 6 observations, got %d", len(table.Observations))
	}
	if len(table.Reported) != 2 {
		t.Errorf("expected 2 reported metrics, got %d", len(table.Reported))
	}
}
