package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/typetrans/transform"
)

var forceInit bool

// initCmd: typetrans init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file with the default rules",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := initConfigurationFile(cfgFile, forceInit)
		if err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			os.Exit(1)
		}
		fmt.Printf("Configuration file created: %s\n", path)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string, force bool) (string, error) {
	if configurationPath == "" {
		configurationPath = transform.DefaultConfigName
	}
	if _, err := os.Stat(configurationPath); err == nil && !force {
		return "", fmt.Errorf("%s already exists, use --force to overwrite it", configurationPath)
	}

	return configurationPath, transform.WriteConfig(configurationPath, transform.DefaultConfig())
}
