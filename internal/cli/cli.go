// Package cli turns command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/stagewatch/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("stagewatch", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
stagewatch - visualize pipeline stage graphs and follow runs live.

Usage:
  stagewatch [options]

Examples:
  stagewatch -pipeline ci.yml                     render the dependency diagram
  stagewatch -run 1234 -follow                    follow a run until it completes
  stagewatch -run 1234 -log 7 -follow             tail one log of the run
  stagewatch -pipeline nightly -start -follow     queue a run and follow it

Options:
`)
		flagSet.PrintDefaults()
	}

	pipelineFlag := flagSet.String("pipeline", "", "Pipeline definition: file path, file name under the definitions directory, or remote id.")
	runFlag := flagSet.String("run", "", "Run id to show or control.")
	logFlag := flagSet.Int("log", 0, "Log id within the run to print or tail.")
	followFlag := flagSet.Bool("follow", false, "Keep the view synchronized until the run completes.")
	startFlag := flagSet.Bool("start", false, "Queue a new run of the selected pipeline.")
	cancelFlag := flagSet.Bool("cancel", false, "Cancel the selected run.")
	retryFlag := flagSet.Bool("retry", false, "Retry the selected run.")
	serviceURLFlag := flagSet.String("service-url", "", "Execution service base URL (overrides the settings file).")
	configFlag := flagSet.String("config", "stagewatch.hcl", "Path to the settings file.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if *pipelineFlag == "" && *runFlag == "" {
		slog.Debug("No target provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ConfigPath:      *configFlag,
		PipelineID:      *pipelineFlag,
		RunID:           *runFlag,
		LogID:           *logFlag,
		Follow:          *followFlag,
		Start:           *startFlag,
		Cancel:          *cancelFlag,
		Retry:           *retryFlag,
		ServiceURL:      *serviceURLFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
