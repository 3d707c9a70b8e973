package formatter

import (
	"bytes"
	"fmt"
	"go/token"
	"os"
	"strings"
	"text/template"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	tt "github.com/gnoswap-labs/typetrans/internal/types"
	"github.com/gnoswap-labs/typetrans/rule"
)

const tabWidth = 8

// issue kinds
const (
	RuleSyntax = "rule-syntax"
	RuleImport = "rule-import"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgGreen, color.Bold)
)

// SourceCode stores the content of a rules file as a collection of lines.
type SourceCode struct {
	Lines []string
}

// NewSourceCode splits src into lines.
func NewSourceCode(src string) *SourceCode {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return &SourceCode{Lines: strings.Split(src, "\n")}
}

// ReadSourceCode reads the content of a file and returns it as a SourceCode.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(string(content)), nil
}

// DiagnosticIssues turns compile diagnostics into issues. Import failures
// underline the rest of the rule line, other errors point at one column.
func DiagnosticIssues(filename string, snippet *SourceCode, diags []rule.Diagnostic) []tt.Issue {
	issues := make([]tt.Issue, 0, len(diags))
	for _, d := range diags {
		start := token.Position{Filename: filename, Line: d.Line, Column: d.Column}
		end := start

		kind := RuleSyntax
		var note string
		if isImportError(d.Message) {
			kind = RuleImport
			note = "-f paths are resolved against the configured base_dir"
			if d.Line >= 1 && d.Line <= len(snippet.Lines) {
				if n := len([]rune(strings.TrimRight(snippet.Lines[d.Line-1], " \t"))); n >= d.Column {
					end.Column = n
				}
			}
		}

		issues = append(issues, tt.Issue{
			Rule:     kind,
			Filename: filename,
			Message:  d.Message,
			Note:     note,
			Start:    start,
			End:      end,
		})
	}
	return issues
}

func isImportError(msg string) bool {
	return strings.HasPrefix(msg, "file not found:") || strings.HasPrefix(msg, "failed to read ")
}

// FormatDiagnostics renders the diagnostics of source, read from filename.
func FormatDiagnostics(filename, source string, diags []rule.Diagnostic) string {
	snippet := NewSourceCode(source)
	return GenerateFormattedIssue(DiagnosticIssues(filename, snippet, diags), snippet)
}

// GenerateFormattedIssue formats a slice of issues into a human-readable string.
func GenerateFormattedIssue(issues []tt.Issue, snippet *SourceCode) string {
	var builder strings.Builder
	for _, issue := range issues {
		builder.WriteString(buildIssue(issue, snippet))
	}
	return builder.String()
}

/***** Issue Formatter Builder *****/

type IssueData struct {
	Rule            string
	Filename        string
	Padding         string
	StartLine       int
	StartColumn     int
	EndLine         int
	EndColumn       int
	MaxLineNumWidth int
	Message         string
	Note            string
	SnippetLines    []string
}

const issueTemplate = `{{header .Rule .MaxLineNumWidth .Filename .StartLine .StartColumn}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines}}
{{- if .Note }}{{note .Note .Padding}}{{ end }}
`

var issueTmpl = template.Must(template.New("issue").Funcs(template.FuncMap{
	"header":              header,
	"snippet":             codeSnippet,
	"underlineAndMessage": underlineAndMessage,
	"note":                note,
}).Parse(issueTemplate))

func buildIssue(issue tt.Issue, snippet *SourceCode) string {
	endLine := issue.End.Line
	if endLine < issue.Start.Line {
		endLine = issue.Start.Line
	}
	maxLineNumWidth := calculateMaxLineNumWidth(endLine)

	data := IssueData{
		Rule:            issue.Rule,
		Filename:        issue.Filename,
		StartLine:       issue.Start.Line,
		StartColumn:     issue.Start.Column,
		EndLine:         endLine,
		EndColumn:       issue.End.Column,
		Message:         issue.Message,
		Note:            issue.Note,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		SnippetLines:    snippet.Lines,
	}

	var buf bytes.Buffer
	if err := issueTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}
	return buf.String()
}

// utils functions used in the text template

func header(rule string, maxLineNumWidth int, filename string, startLine int, startColumn int) string {
	endString := errorStyle.Sprint("error: ")
	endString += ruleStyle.Sprintf("%s\n", rule)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d:%d", filename, startLine, startColumn)

	return endString
}

func codeSnippet(snippetLines []string, startLine int, endLine int, maxLineNumWidth int, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)

	for i := startLine; i <= endLine; i++ {
		if i-1 < 0 || i-1 >= len(snippetLines) {
			continue
		}
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, i)
		endString += lineStyle.Sprintf("%s | ", lineNum)
		endString += fmt.Sprintf("%s\n", expandTabs(snippetLines[i-1]))
	}

	return endString
}

func underlineAndMessage(message string, padding string, startLine int, endLine int, startColumn int, endColumn int, snippetLines []string) string {
	endString := lineStyle.Sprintf("%s| ", padding)

	if !isValidLineRange(startLine, endLine, snippetLines) {
		endString += messageStyle.Sprintf("%s\n", message)
		return endString
	}

	underlineStart := calculateVisualColumn(snippetLines[startLine-1], startColumn)
	underlineEnd := calculateVisualColumn(snippetLines[endLine-1], endColumn)
	if endColumn >= 1 && endColumn <= len([]rune(snippetLines[endLine-1])) {
		// the last underlined character may be wide
		underlineEnd += charWidth([]rune(snippetLines[endLine-1])[endColumn-1], underlineEnd) - 1
	}
	underlineLength := underlineEnd - underlineStart + 1
	if underlineLength < 1 {
		underlineLength = 1
	}

	endString += strings.Repeat(" ", underlineStart)
	if underlineLength == 1 {
		endString += messageStyle.Sprint("^\n")
	} else {
		endString += messageStyle.Sprintf("%s\n", strings.Repeat("~", underlineLength))
	}

	endString += lineStyle.Sprintf("%s= ", padding)
	endString += messageStyle.Sprintf("%s\n", message)

	return endString
}

func note(note string, padding string) string {
	if note == "" {
		return ""
	}
	endString := lineStyle.Sprintf("%s= ", padding)
	endString += noteStyle.Sprint("note: ")
	endString += fmt.Sprintf("%s\n", note)
	return endString
}

func isValidLineRange(startLine int, endLine int, snippetLines []string) bool {
	return startLine > 0 &&
		endLine > 0 &&
		startLine <= endLine &&
		startLine <= len(snippetLines) &&
		endLine <= len(snippetLines)
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

// calculateVisualColumn returns the terminal column, starting at 0, of the
// character at the 1-based rune column. Tabs advance to the next tab stop
// and full-width characters take two cells.
func calculateVisualColumn(line string, column int) int {
	if column < 1 {
		return 0
	}
	visualColumn := 0
	i := 0
	for _, ch := range line {
		i++
		if i == column {
			break
		}
		visualColumn += charWidth(ch, visualColumn)
	}
	return visualColumn
}

func charWidth(ch rune, visualColumn int) int {
	if ch == '\t' {
		return tabWidth - (visualColumn % tabWidth)
	}
	return runewidth.RuneWidth(ch)
}

// expandTabs replaces tab characters with spaces up to the next tab stop.
func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var expanded strings.Builder
	column := 0
	for _, ch := range line {
		if ch == '\t' {
			n := tabWidth - (column % tabWidth)
			expanded.WriteString(strings.Repeat(" ", n))
			column += n
			continue
		}
		expanded.WriteRune(ch)
		column += runewidth.RuneWidth(ch)
	}
	return expanded.String()
}
