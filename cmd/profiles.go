package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/typetrans/internal"
	"github.com/gnoswap-labs/typetrans/transform"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the configured rule profiles",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listProfiles(os.Stdout, config); err != nil {
			logger.Error("Error listing profiles", zap.Error(err))
			os.Exit(1)
		}
	},
}

func listProfiles(w io.Writer, config transform.Config) error {
	settings, err := config.Settings()
	if err != nil {
		return err
	}
	if len(config.Profiles) == 0 {
		return transform.ErrNoProfiles
	}

	active := config.ActiveProfile
	if active == "" {
		active = config.Profiles[0].Title
	}

	engine := internal.NewEngine(nil, settings)
	for _, title := range config.Titles() {
		marker := " "
		if title == active {
			marker = "*"
		}

		source, err := config.Resolve(title)
		if err != nil {
			fmt.Fprintf(w, "%s %s\t%s\n", marker, title, color.RedString(err.Error()))
			continue
		}
		rs := engine.Load(source)
		if !rs.Valid() {
			fmt.Fprintf(w, "%s %s\t%s\n", marker, title, color.RedString("%d errors", len(rs.Diagnostics)))
			continue
		}
		fmt.Fprintf(w, "%s %s\t%d rules, %d selection rules\n", marker, title, len(rs.Rules), len(rs.Sides))
	}
	return nil
}
