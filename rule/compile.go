package rule

import (
	"fmt"
	"os"
	"path/filepath"
)

// Option configures Compile.
type Option func(*options)

type options struct {
	encoding     Encoding
	baseDir      string
	validateOnly bool
}

// WithEncoding sets the code unit used for precomputed rule lengths.
func WithEncoding(enc Encoding) Option {
	return func(o *options) { o.encoding = enc }
}

// WithBaseDir sets the directory -f paths are resolved against.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = dir }
}

// WithValidateOnly makes -f rules check that the file exists without reading it.
func WithValidateOnly(validate bool) Option {
	return func(o *options) { o.validateOnly = validate }
}

// Compile parses rule source text into a RuleSet.
// Errors never stop compilation: the offending line is skipped and reported
// in RuleSet.Diagnostics, and the remaining lines are still compiled.
func Compile(source string, opts ...Option) *RuleSet {
	o := options{baseDir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	c := &compiler{
		sc:   NewScanner(source),
		opts: o,
		rs:   newRuleSet(o.encoding),
	}
	c.run()
	c.rs.buildIndex()
	return c.rs
}

type compiler struct {
	sc   *Scanner
	opts options
	rs   *RuleSet
}

// parseError carries the column the error was detected at.
type parseError struct {
	col int
	msg string
}

func (e *parseError) Error() string { return e.msg }

func (c *compiler) errorf(format string, args ...any) *parseError {
	return &parseError{col: c.sc.Column(), msg: fmt.Sprintf(format, args...)}
}

func (c *compiler) run() {
	for {
		c.sc.SkipSpaces()
		switch c.sc.Peek() {
		case EOF:
			return
		case '\n':
			c.sc.Eat()
			continue
		case '#':
			c.sc.SkipLine()
			continue
		}

		line, col := c.sc.Line(), c.sc.Column()
		if err := c.parseRule(); err != nil {
			if pe, ok := err.(*parseError); ok {
				col = pe.col
			}
			c.rs.Diagnostics = append(c.rs.Diagnostics, Diagnostic{
				Line:    line,
				Column:  col,
				Message: err.Error(),
			})
			c.sc.SkipLine()
		}
	}
}

func (c *compiler) parseRule() error {
	line, col := c.sc.Line(), c.sc.Column()

	left, err := c.parseString()
	if err != nil {
		return err
	}
	kind, err := c.parseArrow()
	if err != nil {
		return err
	}
	right, err := c.parseString()
	if err != nil {
		return err
	}

	c.sc.SkipSpaces()
	if c.sc.Peek() == '+' {
		c.sc.Eat()
		wrapRight, err := c.parseString()
		if err != nil {
			return err
		}
		if err := c.parseEnd(); err != nil {
			return err
		}
		return c.addSide(kind, left, right, wrapRight, line, col)
	}

	if err := c.parseEnd(); err != nil {
		return err
	}

	if kind == Import {
		content, err := c.importFile(string(literal(right)))
		if err != nil {
			return &parseError{col: col, msg: err.Error()}
		}
		right = []rune(content)
	}

	r, err := newConvRule(kind, left, right, c.opts.encoding)
	if err != nil {
		return &parseError{col: col, msg: err.Error()}
	}
	r.Line = line
	if kind == Import {
		r.ImportPath = c.rs.Imports[len(c.rs.Imports)-1]
	}
	c.rs.addConv(r)
	return nil
}

func (c *compiler) addSide(kind Kind, trigger, left, right []rune, line, col int) error {
	if kind != Insert {
		return &parseError{col: col, msg: "side insert rule only supports ->"}
	}
	trigger = literal(trigger)
	if len(trigger) != 1 {
		return &parseError{
			col: col,
			msg: fmt.Sprintf("side insert rule expects exactly one character on left side, found %d", len(trigger)),
		}
	}
	c.rs.Sides[trigger[0]] = SideRule{
		Trigger: trigger[0],
		Left:    string(literal(left)),
		Right:   string(literal(right)),
		Line:    line,
	}
	return nil
}

// parseString reads a quoted rule string. Unescaped bars become anchors.
func (c *compiler) parseString() ([]rune, error) {
	c.sc.SkipSpaces()
	if ch := c.sc.Peek(); ch != '\'' {
		return nil, c.errorf("expect a rule string starting with ', found %s", describe(ch))
	}
	c.sc.Eat()

	var result []rune
	for {
		ch := c.sc.Eat()
		switch ch {
		case '\\':
			switch c.sc.Peek() {
			case '\'', '\\', '|':
				result = append(result, c.sc.Eat())
			case 'n':
				c.sc.Eat()
				result = append(result, '\n')
			default:
				result = append(result, ch)
			}
		case '|':
			result = append(result, Anchor)
		case '\'':
			return result, nil
		case '\n':
			c.sc.Rewind() // leave the newline for the line loop
			return nil, c.errorf("unterminated rule string")
		case EOF:
			return nil, c.errorf("unterminated rule string")
		default:
			result = append(result, ch)
		}
	}
}

func (c *compiler) parseArrow() (Kind, error) {
	c.sc.SkipSpaces()
	first := c.sc.Peek()
	if first != '-' {
		return Insert, c.errorf("expect ->, -x or -f, found %s", describe(first))
	}
	c.sc.Eat()

	second := c.sc.Peek()
	var kind Kind
	switch second {
	case '>':
		kind = Insert
	case 'x':
		kind = Delete
	case 'f':
		kind = Import
	default:
		return Insert, c.errorf("expect ->, -x or -f, found -%s", describe(second))
	}
	c.sc.Eat()
	return kind, nil
}

// parseEnd accepts an optional trailing comment followed by newline or EOF.
// The newline itself is left for the line loop.
func (c *compiler) parseEnd() error {
	c.sc.SkipSpaces()
	if c.sc.Peek() == '#' {
		c.sc.SkipLine()
	}
	if ch := c.sc.Peek(); ch != '\n' && ch != EOF {
		return c.errorf("expect one rule ending with newline or EOF, found %s", describe(ch))
	}
	return nil
}

func (c *compiler) importFile(path string) (string, error) {
	c.rs.HasImports = true

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(c.opts.baseDir, path)
	}

	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("file not found: %s", path)
	}
	c.rs.Imports = append(c.rs.Imports, full)

	if c.opts.validateOnly {
		return "", nil
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// literal turns anchors back into plain bars, for strings where | has no meaning.
func literal(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, ch := range rs {
		if ch == Anchor {
			ch = '|'
		}
		out[i] = ch
	}
	return out
}

func describe(ch rune) string {
	switch ch {
	case EOF:
		return "EOF"
	case '\n':
		return "newline"
	default:
		return string(ch)
	}
}
