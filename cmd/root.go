package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/typetrans/transform"
)

var (
	version = "dev"

	cfgFile string
	profile string
	debug   bool
	timeout time.Duration

	config transform.Config
	logger *zap.Logger
)

const defaultTimeout = 5 * time.Minute

var rootCmd = &cobra.Command{
	Use:              "typetrans [paths...]",
	Short:            "typetrans - rule driven input conversion for text editors",
	Version:          version,
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(debug || config.Debug)
		return err
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		// typetrans [path1 path2 ...] behaves like the check subcommand
		checkCmd.Run(checkCmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./"+transform.DefaultConfigName+" or ~/.config/typetrans/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "rule profile to use (default: active_profile)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "timeout for file processing")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(profilesCmd)
}

func initConfig() {
	defaults := transform.DefaultConfig()
	viper.SetDefault("name", defaults.Name)
	viper.SetDefault("encoding", defaults.Encoding)
	viper.SetDefault("base_dir", defaults.BaseDir)
	viper.SetDefault("active_profile", defaults.ActiveProfile)
	viper.SetDefault("profiles", defaults.Profiles)

	viper.SetEnvPrefix("TYPETRANS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. ./.typetrans.yaml
		// 2. ~/.config/typetrans/config.yaml
		if _, err := os.Stat(transform.DefaultConfigName); err == nil {
			viper.SetConfigFile(transform.DefaultConfigName)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "typetrans"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		fmt.Fprintf(os.Stderr, "error decoding config: %v\n", err)
		config = defaults
	}

	// relative base_dir follows the config file, not the working directory
	if used := viper.ConfigFileUsed(); used != "" && !filepath.IsAbs(config.BaseDir) {
		config.BaseDir = filepath.Join(filepath.Dir(used), config.BaseDir)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	return cfg.Build()
}
