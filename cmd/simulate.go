package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/typetrans/internal"
	"github.com/gnoswap-labs/typetrans/rule"
	"github.com/gnoswap-labs/typetrans/transform"
)

var (
	rulesPath string
	docText   string
	cursorPos int
	showDiff  bool
)

// ErrInvalidRules is returned when the rules to simulate with do not compile.
var ErrInvalidRules = errors.New("rules have errors")

var simulateCmd = &cobra.Command{
	Use:   "simulate KEYS",
	Short: "Replay keystrokes through the rules and print the result",
	Long: `Types KEYS one character at a time into a document, the way an editor
would, and prints the resulting text with | marking the cursor.
\b is a backspace, \n a newline and \\ a backslash.
Example) typetrans simulate --doc 'a' '《《'`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := simulationEngine(logger, config, profile, rulesPath)
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}

		if err := runSimulate(os.Stdout, engine, docText, cursorPos, args[0], showDiff); err != nil {
			if errors.Is(err, ErrInvalidRules) {
				fmt.Fprint(os.Stderr, formatRuleErrors(engine.Rules()))
			}
			logger.Error("Simulation failed", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	simulateCmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "rules file to use instead of the configured profile")
	simulateCmd.Flags().StringVar(&docText, "doc", "", "initial document text")
	simulateCmd.Flags().IntVar(&cursorPos, "cursor", -1, "initial cursor offset (default: end of the document)")
	simulateCmd.Flags().BoolVar(&showDiff, "diff", false, "show how the result differs from plain typing")
}

func simulationEngine(logger *zap.Logger, config transform.Config, profile, rulesPath string) (*internal.Engine, error) {
	if rulesPath == "" {
		engine, _, err := transform.New(logger, config, profile)
		return engine, err
	}

	settings, err := config.Settings()
	if err != nil {
		return nil, err
	}
	engine := internal.NewEngine(logger, settings)
	if _, err := engine.LoadFile(rulesPath); err != nil {
		return nil, err
	}
	return engine, nil
}

var keyEscapes = strings.NewReplacer(`\\`, `\`, `\b`, "\b", `\n`, "\n", `\t`, "\t")

// parseKeys expands the escapes accepted in KEYS.
func parseKeys(keys string) string {
	return keyEscapes.Replace(keys)
}

// runSimulate replays keys over doc with both engine and a rule-less engine
// and prints the converted result.
func runSimulate(w io.Writer, engine *internal.Engine, doc string, cursor int, keys string, diff bool) error {
	if !engine.Rules().Valid() {
		return ErrInvalidRules
	}

	settings := engine.Settings()
	if cursor < 0 {
		cursor = settings.Encoding.StringLen(doc)
	}
	if cursor > settings.Encoding.StringLen(doc) {
		return fmt.Errorf("cursor %d is past the end of the document", cursor)
	}

	keys = parseKeys(keys)

	session := internal.NewSession(engine, doc, cursor)
	hits := session.Replay(keys)

	fmt.Fprintln(w, withCursor(session))
	fmt.Fprintf(w, "%d of %d keys converted\n", hits, len([]rune(keys)))

	if diff {
		plain := internal.NewSession(internal.NewEngine(nil, settings), doc, cursor)
		plain.Replay(keys)
		fmt.Fprintln(w, renderDiff(plain.Text(), session.Text()))
	}
	return nil
}

func withCursor(s *internal.Session) string {
	d := s.Document()
	return d.Slice(0, s.Cursor()) + "|" + d.Slice(s.Cursor(), d.Len())
}

// renderDiff shows the edits turning plain into converted, in word-diff
// notation.
func renderDiff(plain, converted string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(plain, converted, false))

	added := color.New(color.FgGreen).SprintFunc()
	removed := color.New(color.FgRed).SprintFunc()

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString(added("{+" + d.Text + "+}"))
		case diffmatchpatch.DiffDelete:
			b.WriteString(removed("[-" + d.Text + "-]"))
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

func formatRuleErrors(rs *rule.RuleSet) string {
	var b strings.Builder
	for _, msg := range rs.Errors() {
		b.WriteString(color.RedString("error: ") + msg + "\n")
	}
	return b.String()
}
