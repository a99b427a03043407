// Package constants provides shared constants for the commodity-forecast application.
package constants

// DateLayout is the canonical calendar date format used for output.
const DateLayout = "2006-01-02"

// Input shape constants
const (
	// ShapeTaggedSplitFiles is a tagged-rows forecast file plus a separate
	// metrics file keyed by unique_id.
	ShapeTaggedSplitFiles = "tagged-split-files"

	// ShapeTaggedSingleFile is one wide-rows file with actual and predicted
	// prices side by side.
	ShapeTaggedSingleFile = "tagged-single-file"

	// ShapeTaggedTwoFiles is the single-file shape plus a metrics file.
	ShapeTaggedTwoFiles = "tagged-two-files"
)

// Zero-actual policy constants
const (
	// ZeroActualExclude drops pairs whose actual price is zero before MAPE.
	ZeroActualExclude = "exclude"

	// ZeroActualInclude keeps zero-actual pairs and lets the non-finite
	// result propagate.
	ZeroActualInclude = "include"
)

// Selection constants
const (
	// SelectAll is the axis value meaning "no constraint".
	SelectAll = "all"

	// SelectionSeparator separates multiple values of one axis.
	SelectionSeparator = ","

	// SeriesIDSeparator separates location and commodity in a unique_id.
	SeriesIDSeparator = "/"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultReadTimeoutSeconds bounds how long a request may take to be read.
	DefaultReadTimeoutSeconds = 15
)

// Numeric constants
const (
	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// DecimalPrecision is the precision for rounding percentages (2 decimal places)
	DecimalPrecision = 100

	// ReportedMAPETolerance is how far, in percentage points, a reported MAPE
	// may sit from the computed one before a report warns about it.
	ReportedMAPETolerance = 0.01
)
