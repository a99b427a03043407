// Package testutil provides common utility functions for testing.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/commodity-forecast/internal/accuracy"
)

// FindMetric finds the metric of one series in the metrics slice.
// Returns a pointer to the metric if found, nil otherwise.
func FindMetric(metrics []accuracy.Metric, location, commodity string) *accuracy.Metric {
	for i := range metrics {
		if metrics[i].Location == location && metrics[i].Commodity == commodity {
			return &metrics[i]
		}
	}
	return nil
}

// WriteFile writes content to name inside a fresh temporary directory and
// returns the full path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteCSV writes lines as a newline-terminated CSV file, see WriteFile.
func WriteCSV(t testing.TB, name string, lines ...string) string {
	t.Helper()
	return WriteFile(t, name, strings.Join(lines, "\n")+"\n")
}
