// Package config loads dxvk runtime options from a TOML file.
//
// A configuration file looks like:
//
//	log_level = "info"
//	sink = "recording"
//
//	[d3d11]
//	disable_msaa = false
//	report_hazards = true
//	command_list_reserve = 256
//	record_workers = 4
//
// The file named by the DXVK_CONFIG_FILE environment variable is used by
// [FromEnv]. Unknown keys are rejected so that typos surface early.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvConfigFile names the environment variable holding the config file path.
const EnvConfigFile = "DXVK_CONFIG_FILE"

// DefaultCommandListReserve is the default initial command capacity of a
// deferred command list.
const DefaultCommandListReserve = 256

// Errors returned by this package.
var (
	// ErrUnknownLogLevel is returned for an unrecognized log_level value.
	ErrUnknownLogLevel = errors.New("config: unknown log level")

	// ErrInvalidReserve is returned for a negative command_list_reserve.
	ErrInvalidReserve = errors.New("config: command_list_reserve must not be negative")

	// ErrInvalidWorkers is returned for a negative record_workers.
	ErrInvalidWorkers = errors.New("config: record_workers must not be negative")
)

// Options holds runtime options.
type Options struct {
	// LogLevel is one of debug, info, warn, error or none.
	// Empty means none.
	LogLevel string `toml:"log_level"`

	// Sink names a registered sink backend. Empty selects the best
	// registered backend.
	Sink string `toml:"sink"`

	D3D11 D3D11Options `toml:"d3d11"`
}

// D3D11Options holds context behavior switches.
type D3D11Options struct {
	// DisableMSAA forces a sample count of 1 in derived rasterizer and
	// multisample state.
	DisableMSAA bool `toml:"disable_msaa"`

	// ReportHazards logs every hazard eviction at warn level.
	ReportHazards bool `toml:"report_hazards"`

	// DropHazardousInputs keeps a bound output when a shader resource view
	// of the same resource is bound, leaving the shader resource slot empty.
	// By default the newer shader resource binding evicts the output.
	DropHazardousInputs bool `toml:"drop_hazardous_inputs"`

	// CommandListReserve is the initial command capacity of deferred
	// command lists. Zero selects DefaultCommandListReserve.
	CommandListReserve int `toml:"command_list_reserve"`

	// RecordWorkers bounds the goroutines that record command lists in
	// parallel. Zero means GOMAXPROCS.
	RecordWorkers int `toml:"record_workers"`
}

// Default returns the default options.
func Default() Options {
	return Options{
		D3D11: D3D11Options{
			CommandListReserve: DefaultCommandListReserve,
		},
	}
}

// Parse decodes TOML data on top of the defaults.
func Parse(data []byte) (Options, error) {
	opts := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return Options{}, fmt.Errorf("config: %w\n%s", err, missing.String())
		}
		return Options{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	if opts.D3D11.CommandListReserve == 0 {
		opts.D3D11.CommandListReserve = DefaultCommandListReserve
	}
	return opts, nil
}

// Load reads and parses the file at path.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}
	opts, err := Parse(data)
	if err != nil {
		return Options{}, fmt.Errorf("%w (file %s)", err, path)
	}
	return opts, nil
}

// FromEnv loads the file named by DXVK_CONFIG_FILE, or returns the
// defaults when the variable is unset or empty.
func FromEnv() (Options, error) {
	path := os.Getenv(EnvConfigFile)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks option values.
func (o Options) Validate() error {
	if _, _, err := o.SlogLevel(); err != nil {
		return err
	}
	if o.D3D11.CommandListReserve < 0 {
		return ErrInvalidReserve
	}
	if o.D3D11.RecordWorkers < 0 {
		return ErrInvalidWorkers
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level. The boolean is false when
// logging is disabled.
func (o Options) SlogLevel() (slog.Level, bool, error) {
	switch strings.ToLower(strings.TrimSpace(o.LogLevel)) {
	case "", "none", "off":
		return 0, false, nil
	case "debug":
		return slog.LevelDebug, true, nil
	case "info":
		return slog.LevelInfo, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "error":
		return slog.LevelError, true, nil
	default:
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownLogLevel, o.LogLevel)
	}
}

// Encode returns the options as TOML.
func (o Options) Encode() ([]byte, error) {
	data, err := toml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("config: encode: %w", err)
	}
	return data, nil
}
