// Package config loads the optional stagewatch.hcl settings file. Every
// field has a sane default, so running without a file works; CLI flags
// override whatever the file says.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Config is the decoded, validated application configuration.
type Config struct {
	// DefinitionsDir is where local pipeline definition files live.
	DefinitionsDir string
	Service        ServiceConfig
	Watch          WatchConfig
}

// ServiceConfig locates the execution service.
type ServiceConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// WatchConfig tunes the polling cadence.
type WatchConfig struct {
	StatusInterval time.Duration
	LogInterval    time.Duration
	GraceDelay     time.Duration
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DefinitionsDir: ".",
		Service: ServiceConfig{
			Timeout: 30 * time.Second,
		},
		Watch: WatchConfig{
			StatusInterval: 5 * time.Second,
			LogInterval:    2 * time.Second,
			GraceDelay:     time.Second,
		},
	}
}

// fileConfig is the HCL shape of the settings file.
type fileConfig struct {
	DefinitionsDir *string       `hcl:"definitions_dir,optional"`
	Service        *serviceBlock `hcl:"service,block"`
	Watch          *watchBlock   `hcl:"watch,block"`
}

type serviceBlock struct {
	BaseURL string `hcl:"base_url,optional"`
	Token   string `hcl:"token,optional"`
	Timeout string `hcl:"timeout,optional"`
}

type watchBlock struct {
	StatusInterval string `hcl:"status_interval,optional"`
	LogInterval    string `hcl:"log_interval,optional"`
	GraceDelay     string `hcl:"grace_delay,optional"`
}

// Load reads and decodes the settings file at path. An empty path or a
// missing file yields the defaults. Expressions in the file can reference
// process environment variables through the `env` object.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing config %s: %w", path, diags)
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &fc); diags.HasErrors() {
		return nil, fmt.Errorf("decoding config %s: %w", path, diags)
	}

	if fc.DefinitionsDir != nil {
		cfg.DefinitionsDir = *fc.DefinitionsDir
	}
	if fc.Service != nil {
		cfg.Service.BaseURL = fc.Service.BaseURL
		cfg.Service.Token = fc.Service.Token
		if err := overrideDuration(&cfg.Service.Timeout, fc.Service.Timeout); err != nil {
			return nil, fmt.Errorf("config %s: service.timeout: %w", path, err)
		}
	}
	if fc.Watch != nil {
		for _, field := range []struct {
			name  string
			dst   *time.Duration
			value string
		}{
			{"watch.status_interval", &cfg.Watch.StatusInterval, fc.Watch.StatusInterval},
			{"watch.log_interval", &cfg.Watch.LogInterval, fc.Watch.LogInterval},
			{"watch.grace_delay", &cfg.Watch.GraceDelay, fc.Watch.GraceDelay},
		} {
			if err := overrideDuration(field.dst, field.value); err != nil {
				return nil, fmt.Errorf("config %s: %s: %w", path, field.name, err)
			}
		}
	}
	return cfg, nil
}

// evalContext exposes the process environment to config expressions as an
// `env` object.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, entry := range os.Environ() {
		if key, value, ok := strings.Cut(entry, "="); ok && key != "" {
			vars[key] = cty.StringVal(value)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func overrideDuration(dst *time.Duration, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
