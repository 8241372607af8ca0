package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/procwatch/procurement-cli/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config.yaml with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "config.yaml"
		if !configInitForce {
			if _, err := os.Stat(path); err == nil {
				return eris.Errorf("%s already exists, use --force to overwrite", path)
			}
		}

		out, err := yaml.Marshal(config.Default())
		if err != nil {
			return eris.Wrap(err, "marshal default config")
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return eris.Wrap(err, "write config file")
		}

		zap.L().Info("default config written", zap.String("path", path))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config.yaml")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
