// Package config handles configuration loading using viper.
package config

import (
	"fmt"

	"firestige.xyz/wiretap/internal/core"
	"firestige.xyz/wiretap/internal/log"
)

// Config is the top-level static configuration.
type Config struct {
	Engine EngineConfig `mapstructure:"engine"`
	Log    log.Config   `mapstructure:"log"`
	Hooks  []HookConfig `mapstructure:"hooks"`
}

// EngineConfig carries the interception engine settings.
type EngineConfig struct {
	// MaxPackets bounds the retained history ring.
	MaxPackets int `mapstructure:"max_packets"`
	// VerifySignatures enables integrity verification of decoded packets.
	VerifySignatures bool `mapstructure:"verify_signatures"`
	// SigningSecret keys the signature MAC. Required when verification is
	// enabled.
	SigningSecret string `mapstructure:"signing_secret"`
}

// HookConfig declares one configured transform. An empty method registers the
// hook globally. Config is action-specific and decoded by the transform
// constructor.
type HookConfig struct {
	Method string         `mapstructure:"method"`
	Action string         `mapstructure:"action"` // log | redact | status_override
	Config map[string]any `mapstructure:"config"`
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Engine.MaxPackets <= 0 {
		return fmt.Errorf("%w: engine.max_packets must be positive", core.ErrConfigInvalid)
	}
	if c.Engine.VerifySignatures && c.Engine.SigningSecret == "" {
		return fmt.Errorf("%w: engine.signing_secret required when verification is enabled", core.ErrConfigInvalid)
	}
	for idx, h := range c.Hooks {
		if h.Action == "" {
			return fmt.Errorf("%w: hooks[%d].action is required", core.ErrConfigInvalid, idx)
		}
		if h.Method != "" && !core.ValidMethod(h.Method) {
			return fmt.Errorf("%w: hooks[%d].method %q must match [A-Z_]+", core.ErrConfigInvalid, idx, h.Method)
		}
	}
	return nil
}
