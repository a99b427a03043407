package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/commodity-forecast/internal/config"
	"github.com/iwvelando/commodity-forecast/internal/dashboard"
	"github.com/iwvelando/commodity-forecast/internal/logging"
	"github.com/iwvelando/commodity-forecast/internal/selection"
	"github.com/iwvelando/commodity-forecast/pkg/constants"
	"github.com/iwvelando/commodity-forecast/pkg/output"
	"github.com/iwvelando/commodity-forecast/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	location := flag.String("location", constants.SelectAll, "comma-separated locations to show, or all")
	commodity := flag.String("commodity", constants.SelectAll, "comma-separated commodities to show, or all")
	zeroActual := flag.String("zero-actual", "", "zero actual price policy override: exclude, include")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if *zeroActual != "" {
		conf.Accuracy.ZeroActual = *zeroActual
	}

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	src, _ := conf.Source()
	policy, _ := conf.Policy()
	pipeline := dashboard.NewPipeline(dashboard.NewCache(logger), src, policy)

	// Load, reshape and aggregate the input files.
	data, err := pipeline.Dataset()
	if err != nil {
		logger.Fatal("failed to load dataset",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	sel := selection.Parse(*location, *commodity)
	for _, warning := range validation.ValidateSelectionValues("location", sel.Locations.Values(), data.Locations) {
		logger.Warn("Selection warning: "+warning, zap.String("op", "main"))
	}
	for _, warning := range validation.ValidateSelectionValues("commodity", sel.Commodities.Values(), data.Commodities) {
		logger.Warn("Selection warning: "+warning, zap.String("op", "main"))
	}

	view, err := data.Filter(sel)
	if errors.Is(err, selection.ErrEmptySelection) {
		logger.Warn("selection matched no data",
			zap.String("op", "main"),
			zap.Stringer("selection", sel),
		)
	}

	report := output.NewReport(view, err)

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		err = output.PrettyFormat(os.Stdout, report)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(os.Stdout, report)
	case constants.OutputFormatJSON:
		err = output.JSONFormat(os.Stdout, report)
	}
	if err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
