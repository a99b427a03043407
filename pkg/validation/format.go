// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"sort"

	"github.com/iwvelando/commodity-forecast/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateSelectionValues returns a warning for every requested value of the
// named axis that does not occur in available, which must be sorted.
func ValidateSelectionValues(axis string, requested, available []string) []string {
	var warnings []string
	for _, value := range requested {
		i := sort.SearchStrings(available, value)
		if i == len(available) || available[i] != value {
			warnings = append(warnings, fmt.Sprintf("unknown %s %q", axis, value))
		}
	}
	return warnings
}
