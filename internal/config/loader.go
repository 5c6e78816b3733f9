package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const defaultMaxPackets = 1000

// Load reads and validates the configuration at path. Settings may be
// overridden through WIRETAP_-prefixed environment variables, e.g.
// WIRETAP_ENGINE_SIGNING_SECRET.
func Load(path string) (*Config, error) {
	v := viper.New()

	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	fileExt := filepath.Ext(filename)

	v.SetConfigName(strings.TrimSuffix(filename, fileExt))
	v.SetConfigType(strings.TrimPrefix(fileExt, "."))
	v.AddConfigPath(dir)

	v.SetEnvPrefix("WIRETAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Engine.MaxPackets == 0 {
		config.Engine.MaxPackets = defaultMaxPackets
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}
