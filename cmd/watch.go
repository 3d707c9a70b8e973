package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/typetrans/formatter"
	"github.com/gnoswap-labs/typetrans/internal"
	"github.com/gnoswap-labs/typetrans/rule"
)

var watchCmd = &cobra.Command{
	Use:   "watch RULES_FILE",
	Short: "Recompile a rules file every time it is saved",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := config.Settings()
		if err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine := internal.NewEngine(logger, settings)
		if err := runWatch(ctx, os.Stdout, engine, args[0]); err != nil {
			logger.Error("Watch failed", zap.Error(err))
			os.Exit(1)
		}
	},
}

// runWatch loads path, reports on it and keeps reporting after every save
// until ctx is done.
func runWatch(ctx context.Context, w io.Writer, engine *internal.Engine, path string) error {
	rs, err := engine.LoadFile(path)
	if err != nil {
		return err
	}
	reportRules(w, path, rs)

	if err := engine.StartWatching(path, func(rs *rule.RuleSet) {
		reportRules(w, path, rs)
	}); err != nil {
		return err
	}
	defer engine.StopWatching()

	<-ctx.Done()
	return nil
}

func reportRules(w io.Writer, path string, rs *rule.RuleSet) {
	if rs.Valid() {
		fmt.Fprintf(w, "%s %s: %d rules, %d selection rules\n",
			color.GreenString("ok"), path, len(rs.Rules), len(rs.Sides))
		return
	}

	source, err := os.ReadFile(path)
	if err != nil {
		for _, msg := range rs.Errors() {
			fmt.Fprintln(w, color.RedString("error: ")+msg)
		}
		return
	}
	fmt.Fprint(w, formatter.FormatDiagnostics(path, string(source), rs.Diagnostics))
}
