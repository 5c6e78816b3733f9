package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"firestige.xyz/wiretap/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without running the engine.

Prints the effective configuration — defaults applied, environment overrides
resolved — as YAML when valid.

Example:
  wiretap validate -c config.yml`,
	Run: func(cmd *cobra.Command, args []string) {
		runValidateCommand()
	},
}

func runValidateCommand() {
	cfg, err := config.Load(configFile)
	if err != nil {
		exitWithError("INVALID", err)
	}

	secret := ""
	if cfg.Engine.SigningSecret != "" {
		secret = "<set>" // keep the secret itself out of terminal output
	}
	out, err := yaml.Marshal(map[string]any{
		"engine": map[string]any{
			"max_packets":       cfg.Engine.MaxPackets,
			"verify_signatures": cfg.Engine.VerifySignatures,
			"signing_secret":    secret,
		},
		"hooks": cfg.Hooks,
	})
	if err != nil {
		exitWithError("failed to render config", err)
	}

	fmt.Printf("VALID: %d hook(s) configured\n---\n%s", len(cfg.Hooks), out)
}
