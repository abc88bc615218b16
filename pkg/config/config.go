// Package config loads the classification run settings.
//
// Values are resolved in this order, later sources winning:
//
//	defaults -> YAML file -> .env file / environment (POINTZONE_*) -> command-line flags
//
// Flags are applied by the caller before Validate.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "POINTZONE"

// ErrorType classifies configuration failures
type ErrorType string

const (
	ErrFile       ErrorType = "FILE"
	ErrParsing    ErrorType = "PARSING"
	ErrValidation ErrorType = "VALIDATION"
)

// Error is returned by Load and Validate
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config holds everything a classification run needs. Environment keys are
// derived from field names under EnvPrefix, e.g. POINTZONE_LOG_LEVEL.
type Config struct {
	Zones           string `yaml:"zones" validate:"required"`
	Layers          string `yaml:"layers" validate:"required"`
	Output          string `yaml:"output" validate:"required"`
	Format          string `yaml:"format" validate:"oneof=xlsx csv geojson"`
	Extension       string `yaml:"extension" validate:"required"`
	Workers         int    `yaml:"workers" validate:"min=1"`
	Boundary        string `yaml:"boundary" validate:"oneof=strict inclusive"`
	RTree           bool   `yaml:"rtree"`
	ContinueOnError bool   `yaml:"continue_on_error" split_words:"true"`

	Log     LogConfig     `yaml:"log"`
	PostGIS PostGISConfig `yaml:"postgis"`
}

// LogConfig controls the progress logger
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// PostGISConfig enables the database sink when DSN is set
type PostGISConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table" validate:"omitempty,max=63"`
}

// Default returns the settings of the original layout: zones.kml next to
// kml_layers/ and xls_layers/.
func Default() *Config {
	return &Config{
		Zones:     "zones.kml",
		Layers:    "kml_layers",
		Output:    "xls_layers",
		Format:    "xlsx",
		Extension: ".kml",
		Workers:   runtime.NumCPU(),
		Boundary:  "strict",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config from defaults, the optional YAML file at path and
// the environment. A missing .env file is not an error; a missing YAML
// file is, when a path is given.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &Error{Type: ErrFile, Message: "failed to read config file", Err: err}
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &Error{Type: ErrParsing, Message: "failed to parse config file", Err: err}
		}
	}

	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, &Error{Type: ErrParsing, Message: "failed to process environment configuration", Err: err}
	}

	return cfg, nil
}

// Validate checks the final configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &Error{
				Type:    ErrValidation,
				Message: fmt.Sprintf("invalid %s", verrs[0].Namespace()),
				Err:     err,
			}
		}
		return &Error{Type: ErrValidation, Message: "configuration validation failed", Err: err}
	}
	return nil
}
