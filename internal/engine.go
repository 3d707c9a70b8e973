package internal

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnoswap-labs/typetrans/internal/types"
	"github.com/gnoswap-labs/typetrans/rule"
)

// Settings holds what a rule set is compiled against.
type Settings struct {
	Encoding rule.Encoding
	BaseDir  string

	// ValidateOnly checks that -f files exist without reading them.
	ValidateOnly bool
}

func (s Settings) options() []rule.Option {
	opts := []rule.Option{rule.WithEncoding(s.Encoding)}
	if s.BaseDir != "" {
		opts = append(opts, rule.WithBaseDir(s.BaseDir))
	}
	if s.ValidateOnly {
		opts = append(opts, rule.WithValidateOnly(true))
	}
	return opts
}

// Engine rewrites single-character edits according to the active rule set.
// The rule set is an immutable snapshot, so Handle may run concurrently
// with Load and the file watcher.
type Engine struct {
	logger   *zap.Logger
	settings Settings
	cache    *Cache
	rules    atomic.Pointer[rule.RuleSet]

	mu         sync.Mutex
	watcher    *fsnotify.Watcher
	watchPath  string
	debounce   time.Duration
	done       chan struct{}
	isWatching bool
}

// NewEngine creates an engine with an empty rule set.
func NewEngine(logger *zap.Logger, settings Settings) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:   logger,
		settings: settings,
		cache:    NewCache(DefaultExpiration, DefaultCleanupInterval),
		debounce: DefaultDebounce,
	}
	e.rules.Store(rule.Compile("", settings.options()...))
	return e
}

// Settings returns the settings rule sets are compiled with.
func (e *Engine) Settings() Settings { return e.settings }

// Rules returns the active rule set.
func (e *Engine) Rules() *rule.RuleSet { return e.rules.Load() }

// Load compiles source and makes it the active rule set, even when it has
// diagnostics. An invalid rule set leaves every edit untouched.
func (e *Engine) Load(source string) *rule.RuleSet {
	rs := e.cache.Compile(source, e.settings)
	e.rules.Store(rs)

	if !rs.Valid() {
		for _, d := range rs.Diagnostics {
			e.logger.Warn("rule compile error",
				zap.Int("line", d.Line),
				zap.Int("column", d.Column),
				zap.String("message", d.Message),
			)
		}
		return rs
	}

	e.logger.Debug("rules loaded",
		zap.Int("rules", len(rs.Rules)),
		zap.Int("sides", len(rs.Sides)),
		zap.Strings("imports", rs.Imports),
	)
	return rs
}

// LoadFile reads path and loads its content.
func (e *Engine) LoadFile(path string) (*rule.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return e.Load(string(data)), nil
}

// Handle decides whether edit should be replaced. doc is the document
// before the edit. The returned change applies to that same document;
// false means the edit goes through unchanged.
func (e *Engine) Handle(doc tt.Document, edit tt.Edit) (tt.Change, bool) {
	rs := e.rules.Load()
	if !rs.Valid() || edit.From < 0 || edit.From > edit.To || edit.To > doc.Len() {
		return tt.Change{}, false
	}

	switch {
	case edit.IsReplace():
		return e.handleSide(rs, doc, edit)
	case edit.IsInsert():
		return e.handleInsert(rs, doc, edit)
	case edit.IsDelete():
		return e.handleDelete(rs, doc, edit)
	}
	return tt.Change{}, false
}

func (e *Engine) handleSide(rs *rule.RuleSet, doc tt.Document, edit tt.Edit) (tt.Change, bool) {
	ch, ok := singleRune(edit.Text)
	if !ok {
		return tt.Change{}, false
	}
	side, ok := rs.Side(ch)
	if !ok {
		return tt.Change{}, false
	}

	selected := doc.Slice(edit.From, edit.To)
	e.logger.Debug("side rule fired", zap.Int("line", side.Line), zap.String("rule", side.String()))
	return SideInsert(side, selected, edit.From, edit.To, rs.Encoding), true
}

func (e *Engine) handleInsert(rs *rule.RuleSet, doc tt.Document, edit tt.Edit) (tt.Change, bool) {
	ch, ok := singleRune(edit.Text)
	if !ok || !rs.HasInsertTrigger(ch) {
		return tt.Change{}, false
	}

	pre, post := window(doc, rs.Encoding, edit.From, rs.LMax, rs.RMax)
	input := make([]rune, 0, len(pre)+1+len(post))
	input = append(input, pre...)
	input = append(input, ch)
	input = append(input, post...)

	r, ok := Match(rs, input, ch, len(pre))
	if !ok {
		return tt.Change{}, false
	}
	return e.mapRule(r, edit.From)
}

func (e *Engine) handleDelete(rs *rule.RuleSet, doc tt.Document, edit tt.Edit) (tt.Change, bool) {
	ch, ok := singleRune(doc.Slice(edit.From, edit.To))
	if !ok || !rs.HasDeleteTrigger(ch) {
		return tt.Change{}, false
	}

	// the window ends with the deleted character, the marker stands right after it
	pre, post := window(doc, rs.Encoding, edit.To, rs.LMax, rs.RMax)
	input := make([]rune, 0, len(pre)+1+len(post))
	input = append(input, pre...)
	input = append(input, rule.DeleteMarker)
	input = append(input, post...)

	r, ok := Match(rs, input, rule.DeleteMarker, len(pre))
	if !ok {
		return tt.Change{}, false
	}
	return e.mapRule(r, edit.From)
}

func (e *Engine) mapRule(r *rule.ConvRule, pos int) (tt.Change, bool) {
	change, err := MapToChange(r, pos)
	if err != nil {
		if errors.Is(err, ErrNegativeSpan) {
			e.logger.Warn("rule skipped", zap.Error(err))
		} else {
			e.logger.Error("failed to map rule", zap.Int("line", r.Line), zap.Error(err))
		}
		return tt.Change{}, false
	}

	e.logger.Debug("rule fired",
		zap.Int("line", r.Line),
		zap.String("rule", r.String()),
		zap.Int("from", change.From),
		zap.Int("to", change.To),
	)
	return change, true
}

// HandleAll handles the edits of one multi-cursor transaction. All edits
// refer to the same prior document. The transaction is rewritten only when
// every edit is rewritten and the resulting changes do not overlap; the
// returned changes are sorted and their selections are positioned in the
// document after all of them are applied.
func (e *Engine) HandleAll(doc tt.Document, edits []tt.Edit) ([]tt.Change, bool) {
	if len(edits) == 0 {
		return nil, false
	}

	changes := make([]tt.Change, 0, len(edits))
	for _, edit := range edits {
		c, ok := e.Handle(doc, edit)
		if !ok {
			return nil, false
		}
		changes = append(changes, c)
	}

	sort.SliceStable(changes, func(i, j int) bool { return changes[i].From < changes[j].From })

	enc := e.rules.Load().Encoding
	delta := 0
	for i := range changes {
		if i > 0 && changes[i].From < changes[i-1].To {
			e.logger.Debug("overlapping changes, transaction passed through",
				zap.Int("from", changes[i].From),
				zap.Int("prev_to", changes[i-1].To),
			)
			return nil, false
		}
		changes[i].Anchor += delta
		changes[i].Head += delta
		delta += enc.StringLen(changes[i].Insert) - (changes[i].To - changes[i].From)
	}
	return changes, true
}

// singleRune returns the only character of s.
func singleRune(s string) (rune, bool) {
	if s == "" {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || (r == utf8.RuneError && size == 1) {
		return 0, false
	}
	return r, true
}
