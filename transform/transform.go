package transform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/typetrans/formatter"
	"github.com/gnoswap-labs/typetrans/internal"
	tt "github.com/gnoswap-labs/typetrans/internal/types"
	"github.com/gnoswap-labs/typetrans/rule"
	"github.com/gnoswap-labs/typetrans/scanner"
)

const (
	// RulesExt is the extension of rule files picked up when walking directories.
	RulesExt = ".rules"
	// MaxRulesFileSize is the largest rules file checked when walking directories.
	MaxRulesFileSize = 1 << 20
)

type RuleChecker interface {
	Check(path string) ([]tt.Issue, error)
	CheckSource(name string, source []byte) []tt.Issue
}

// New builds an engine loaded with the given profile of config, or its
// active profile when profile is empty.
func New(logger *zap.Logger, config Config, profile string) (*internal.Engine, *rule.RuleSet, error) {
	settings, err := config.Settings()
	if err != nil {
		return nil, nil, err
	}
	source, err := config.Resolve(profile)
	if err != nil {
		return nil, nil, err
	}

	engine := internal.NewEngine(logger, settings)
	return engine, engine.Load(source), nil
}

// Checker compiles rule files and reports their diagnostics as issues.
type Checker struct {
	settings internal.Settings
	cache    *internal.Cache
}

// NewChecker creates a Checker. Imported files are only checked for
// existence, never read.
func NewChecker(settings internal.Settings) *Checker {
	settings.ValidateOnly = true
	return &Checker{
		settings: settings,
		cache:    internal.NewCache(internal.DefaultExpiration, internal.DefaultCleanupInterval),
	}
}

// Check compiles the rules file at path. Imports are resolved against the
// configured base directory, or the file's own directory when none is set.
func (c *Checker) Check(path string) ([]tt.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	settings := c.settings
	if settings.BaseDir == "" {
		settings.BaseDir = filepath.Dir(path)
	}
	rs := c.cache.Compile(string(data), settings)
	return formatter.DiagnosticIssues(path, formatter.NewSourceCode(string(data)), rs.Diagnostics), nil
}

func (c *Checker) CheckSource(name string, source []byte) []tt.Issue {
	rs := c.cache.Compile(string(source), c.settings)
	return formatter.DiagnosticIssues(name, formatter.NewSourceCode(string(source)), rs.Diagnostics)
}

func ProcessFile(checker RuleChecker, path string) ([]tt.Issue, error) {
	return checker.Check(path)
}

func ProcessSources(checker RuleChecker, sources map[string][]byte) []tt.Issue {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var allIssues []tt.Issue
	for _, name := range names {
		allIssues = append(allIssues, checker.CheckSource(name, sources[name])...)
	}
	return allIssues
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	checker RuleChecker,
	paths []string,
	processor func(RuleChecker, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, checker, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

// ProcessPath checks a single file, or every rules file below a directory
// using a bounded pool of workers. Issues come back sorted by position.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	checker RuleChecker,
	path string,
	processor func(RuleChecker, string) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		return processor(checker, path)
	}

	s := scanner.New(path, RulesExt).WithMaxSize(MaxRulesFileSize)
	found, err := s.Scan()
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}
	for _, skipped := range s.Skipped() {
		if logger != nil {
			logger.Warn("Skipping oversized rules file", zap.String("file", skipped))
		}
	}
	files := make([]string, len(found))
	for i, f := range found {
		files[i] = f.Path
	}

	type result struct {
		issues []tt.Issue
		err    error
	}
	results := make(chan result, len(files))

	// limit the number of workers
	sem := make(chan struct{}, runtime.NumCPU())

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	started := 0
	var ctxErr error
	for _, filePath := range files {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
		case sem <- struct{}{}:
			started++
			go func(fp string) {
				defer func() { <-sem }()
				fileIssues, err := processor(checker, fp)
				if err != nil && logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				results <- result{issues: fileIssues, err: err}
				_ = bar.Add(1)
			}(filePath)
		}
		if ctxErr != nil {
			break
		}
	}

	issues := make([]tt.Issue, 0)
	for range started {
		r := <-results
		if r.err != nil {
			continue
		}
		issues = append(issues, r.issues...)
	}
	sortIssues(issues)

	return issues, ctxErr
}

func sortIssues(issues []tt.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i].Start, issues[j].Start
		if issues[i].Filename != issues[j].Filename {
			return issues[i].Filename < issues[j].Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}
