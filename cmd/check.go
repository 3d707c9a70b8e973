package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/typetrans/formatter"
	tt "github.com/gnoswap-labs/typetrans/internal/types"
	"github.com/gnoswap-labs/typetrans/transform"
)

var (
	checkJsonOutput bool
	outPath         string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Compile rule files and report their diagnostics",
	Long: `Compiles every .rules file under the given paths and reports syntax and
import errors. With no paths, the profiles of the loaded configuration are checked.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		settings, err := config.Settings()
		if err != nil {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}
		checker := transform.NewChecker(settings)

		var found bool
		if len(args) == 0 {
			found, err = runProfileCheck(os.Stdout, config, checker, checkJsonOutput)
		} else {
			found, err = runCheckProcess(ctx, logger, checker, args, os.Stdout, checkJsonOutput, outPath)
		}
		if err != nil {
			logger.Error("Error checking rules", zap.Error(err))
			os.Exit(1)
		}
		if found {
			os.Exit(1)
		}
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJsonOutput, "json", false, "Output issues in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
}

// runCheckProcess checks paths and prints what it finds. It reports whether
// any issue was found.
func runCheckProcess(
	ctx context.Context,
	logger *zap.Logger,
	checker transform.RuleChecker,
	paths []string,
	w io.Writer,
	isJson bool,
	jsonOutput string,
) (bool, error) {
	issues, err := transform.ProcessFiles(ctx, logger, checker, paths, transform.ProcessFile)
	if err != nil {
		return false, err
	}
	if err := printIssues(w, logger, issues, nil, isJson, jsonOutput); err != nil {
		return false, err
	}
	return len(issues) > 0, nil
}

// runProfileCheck checks the inline rules of every profile in config.
func runProfileCheck(w io.Writer, config transform.Config, checker transform.RuleChecker, isJson bool) (bool, error) {
	sources := make(map[string][]byte, len(config.Profiles))
	for _, title := range config.Titles() {
		source, err := config.Resolve(title)
		if err != nil {
			return false, err
		}
		sources[profileName(title)] = []byte(source)
	}

	issues := transform.ProcessSources(checker, sources)
	if err := printIssues(w, logger, issues, sources, isJson, ""); err != nil {
		return false, err
	}
	return len(issues) > 0, nil
}

func profileName(title string) string {
	return "profile:" + title
}

// printIssues writes issues grouped by file. Sources not found in sources
// are read from disk.
func printIssues(w io.Writer, logger *zap.Logger, issues []tt.Issue, sources map[string][]byte, isJson bool, jsonOutput string) error {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	if isJson {
		d, err := json.Marshal(issuesByFile)
		if err != nil {
			return fmt.Errorf("error marshalling issues to JSON: %w", err)
		}
		if jsonOutput == "" {
			_, err = fmt.Fprintln(w, string(d))
			return err
		}
		return os.WriteFile(jsonOutput, d, 0o644)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		var sourceCode *formatter.SourceCode
		if src, ok := sources[filename]; ok {
			sourceCode = formatter.NewSourceCode(string(src))
		} else {
			var err error
			sourceCode, err = formatter.ReadSourceCode(filename)
			if err != nil {
				if logger != nil {
					logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
				}
				continue
			}
		}
		fmt.Fprint(w, formatter.GenerateFormattedIssue(issuesByFile[filename], sourceCode))
	}
	return nil
}
