package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const ConfigFileName = "config.yml"

type Config struct {
	DB       *DBConfig       `yaml:"db"`
	Logger   *LogConfig      `yaml:"logger"`
	Currency *CurrencyConfig `yaml:"currency"`
	Pool     *PoolConfig     `yaml:"pool"`

	// Address the prometheus handler listens on, empty to disable.
	MetricsListenAddr string `yaml:"metricsListenAddr"`
	LogFile           string `yaml:"logFile"`
}

// WithDefaults returns a copy of the Config with every section present and
// any missing fields set to their default values.
func (c Config) WithDefaults(configPath string) Config {
	cpy := c

	db := DBConfig{}
	if cpy.DB != nil {
		db = *cpy.DB
	}
	if db.Path == "" && configPath != "" {
		db.Path = filepath.Join(configPath, "store")
	}
	db = db.WithDefaults()
	cpy.DB = &db

	currency := CurrencyConfig{}
	if cpy.Currency != nil {
		currency = *cpy.Currency
	}
	currency = currency.WithDefaults()
	cpy.Currency = &currency

	pool := PoolConfig{}
	if cpy.Pool != nil {
		pool = *cpy.Pool
	}
	pool = pool.WithDefaults()
	cpy.Pool = &pool

	return cpy
}

// LoadConfig reads config.yml from configPath. A missing file is created with
// the defaults.
func LoadConfig(configPath string) (*Config, error) {
	path := filepath.Join(configPath, ConfigFileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		config := (&Config{}).WithDefaults(configPath)
		if err := SaveConfig(configPath, &config); err != nil {
			return nil, errors.Wrap(err, "load config")
		}
		return &config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	withDefaults := config.WithDefaults(configPath)
	return &withDefaults, nil
}

// SaveConfig writes config as config.yml under configPath.
func SaveConfig(configPath string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "save config")
	}

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return errors.Wrap(err, "save config")
	}

	return errors.Wrap(
		os.WriteFile(filepath.Join(configPath, ConfigFileName), data, 0644),
		"save config",
	)
}
