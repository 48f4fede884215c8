package config

import (
	"github.com/pkg/errors"
	"gopkg.in/gcfg.v1"
)

// ReadConfigFile reads the gcfg file at path. An empty path yields an empty Config.
func ReadConfigFile(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	if err := gcfg.ReadFileInto(cfg, path); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return cfg, nil
}

// ReadConfig parses gcfg text.
func ReadConfig(text string) (*Config, error) {
	cfg := &Config{}
	if err := gcfg.ReadStringInto(cfg, text); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	return cfg, nil
}
