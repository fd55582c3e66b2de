package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/colecta/colecta-cli/internal/config"
)

// NewConfigCommand reads and writes the CLI configuration.
func NewConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or change CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the current configuration",
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadConfig()
					if err != nil {
						return err
					}
					path, _ := config.GetConfigPath()
					fmt.Printf("Config file:  %s\n", path)
					fmt.Printf("backend_url:  %s\n", valueOrUnset(cfg.BackendURL))
					fmt.Printf("api_key:      %s\n", maskSecret(cfg.APIKey))
					fmt.Printf("omdb_api_key: %s\n", maskSecret(cfg.OMDBAPIKey))
					fmt.Printf("data_dir:     %s\n", valueOrUnset(cfg.DataDir))
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "Set a configuration value",
				ArgsUsage: "[key] [value]",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("usage: colecta config set <key> <value>")
					}
					key, value := c.Args().Get(0), c.Args().Get(1)

					cfg, err := config.LoadConfig()
					if err != nil {
						return err
					}

					switch key {
					case "backend_url":
						cfg.BackendURL = value
					case "api_key":
						cfg.APIKey = value
					case "omdb_api_key":
						cfg.OMDBAPIKey = value
					case "data_dir":
						cfg.DataDir = value
					default:
						return fmt.Errorf("unknown config key %q", key)
					}

					if err := config.SaveConfig(cfg); err != nil {
						return err
					}
					fmt.Printf("✅ %s updated.\n", key)
					return nil
				},
			},
		},
	}
}

func valueOrUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func maskSecret(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "…" + s[len(s)-4:]
}
