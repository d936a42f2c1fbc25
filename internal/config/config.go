// Package config loads the toolkit's YAML configuration file.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/tadawul-lab/tasi-analyzer/internal/analysis"
	"github.com/tadawul-lab/tasi-analyzer/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration for download and analysis runs.
type Config struct {
	// DataDir is where downloaded market data files are written.
	DataDir string `yaml:"data_dir" validate:"required"`
	// Tickers holds Tadawul codes or company names. Empty means the whole
	// built-in registry.
	Tickers    []string        `yaml:"tickers"`
	StartDate  string          `yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string          `yaml:"end_date" validate:"required,datetime=2006-01-02,gtfield=StartDate"`
	Interval   string          `yaml:"interval" validate:"omitempty,oneof=1d 1wk 1mo"`
	Provider   string          `yaml:"provider" validate:"omitempty,oneof=yahoo polygon"`
	Writer     string          `yaml:"writer" validate:"omitempty,oneof=duckdb csv"`
	Indicators analysis.Params `yaml:"indicators"`
}

// Load reads and validates the YAML config at path. Unset fields fall back
// to defaults before validation.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeConfigLoadFailed, err, "failed to read config file %s", path)
	}

	return Parse(raw)
}

// Parse decodes and validates raw YAML config bytes.
func Parse(raw []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigLoadFailed, err, "failed to parse config")
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, err, "invalid config")
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Interval == "" {
		c.Interval = "1d"
	}

	if c.Provider == "" {
		c.Provider = "yahoo"
	}

	if c.Writer == "" {
		c.Writer = "duckdb"
	}

	defaults := analysis.DefaultParams()

	if len(c.Indicators.SMAPeriods) == 0 {
		c.Indicators.SMAPeriods = defaults.SMAPeriods
	}

	if len(c.Indicators.EMAPeriods) == 0 {
		c.Indicators.EMAPeriods = defaults.EMAPeriods
	}

	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = defaults.RSIPeriod
	}

	if c.Indicators.MACDFastPeriod == 0 {
		c.Indicators.MACDFastPeriod = defaults.MACDFastPeriod
	}

	if c.Indicators.MACDSlowPeriod == 0 {
		c.Indicators.MACDSlowPeriod = defaults.MACDSlowPeriod
	}

	if c.Indicators.MACDSignal == 0 {
		c.Indicators.MACDSignal = defaults.MACDSignal
	}

	if c.Indicators.BollingerPeriod == 0 {
		c.Indicators.BollingerPeriod = defaults.BollingerPeriod
	}

	if c.Indicators.BollingerStdDev == 0 {
		c.Indicators.BollingerStdDev = defaults.BollingerStdDev
	}

	if c.Indicators.ATRPeriod == 0 {
		c.Indicators.ATRPeriod = defaults.ATRPeriod
	}

	if c.Indicators.MomentumPeriod == 0 {
		c.Indicators.MomentumPeriod = defaults.MomentumPeriod
	}
}
