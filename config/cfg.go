package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	InputConfig struct {
		Directory string       `yaml:"directory" sanitize:"path_clean" validate:"required"`
		Order     ListingOrder `yaml:"order" validate:"oneof=lexical natural"`
		Workers   int          `yaml:"workers" validate:"gte=0"`
		Charset   string       `yaml:"charset"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Input     InputConfig    `yaml:"input"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// checkCharset rejects character sets program could not decode.
func checkCharset(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if len(cfg.Input.Charset) == 0 {
		return
	}
	if _, err := LookupCharset(cfg.Input.Charset); err != nil {
		sl.ReportError(cfg.Input.Charset, "Input.Charset", "Charset", "charset", cfg.Input.Charset)
	}
}

// decode puts values from YAML data on top of cfg. Unknown keys are errors.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func check(cfg *Config) error {
	if err := gencfg.Sanitize(cfg); err != nil {
		return fmt.Errorf("failed to sanitize configuration: %w", err)
	}
	if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkCharset)); err != nil {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}
	return nil
}

// LoadConfiguration expands embedded template to get defaults, puts values
// from file at path (if any) on top of them and checks the result.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}

	cfg := &Config{}
	if err := decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration template: %w", err)
	}

	if len(path) > 0 {
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode configuration file: %w", err)
		}
	}

	if err := check(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Prepare returns expanded default configuration.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

// Dump returns actual configuration as YAML.
func Dump(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return buf.Bytes(), nil
}
