package app

import "errors"

// Config holds everything the CLI resolved for one invocation.
type Config struct {
	// ConfigPath points at the optional stagewatch.hcl settings file.
	ConfigPath string

	// PipelineID selects a pipeline definition: a local file path, the
	// name of a file under the configured definitions directory, or a
	// remote pipeline id.
	PipelineID string
	// RunID selects a run to show, follow, cancel, or retry.
	RunID string
	// LogID selects one log of the run for tailing. 0 means no log view.
	LogID int

	// Follow keeps the view synchronized until the run completes.
	Follow bool
	// Start queues a new run of the selected pipeline.
	Start bool
	// Cancel cancels the selected run.
	Cancel bool
	// Retry re-queues the selected run.
	Retry bool

	// ServiceURL overrides the settings file's execution service endpoint.
	ServiceURL string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates a Config assembled from flags.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelineID == "" && cfg.RunID == "" {
		return nil, errors.New("nothing to do: provide -pipeline and/or -run")
	}
	if cfg.LogID != 0 && cfg.RunID == "" {
		return nil, errors.New("-log requires -run")
	}
	if cfg.Start && cfg.PipelineID == "" {
		return nil, errors.New("-start requires -pipeline")
	}
	if (cfg.Cancel || cfg.Retry) && cfg.RunID == "" {
		return nil, errors.New("-cancel and -retry require -run")
	}
	if cfg.Cancel && cfg.Retry {
		return nil, errors.New("-cancel and -retry are mutually exclusive")
	}
	return &cfg, nil
}
