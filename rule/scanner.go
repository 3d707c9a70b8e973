package rule

// EOF is returned by the scanner once the input is exhausted.
const EOF rune = -1

// Scanner is a character cursor over rule source text.
// It keeps track of the current line so diagnostics can point at it.
type Scanner struct {
	input []rune
	idx   int
	line  int
	col   int // rune column of idx within the current line, 1-based
}

// NewScanner creates a scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{
		input: []rune(src),
		line:  1,
		col:   1,
	}
}

// Peek returns the next character without consuming it.
func (s *Scanner) Peek() rune {
	if s.idx >= len(s.input) {
		return EOF
	}
	return s.input[s.idx]
}

// Eat consumes and returns the next character.
func (s *Scanner) Eat() rune {
	if s.idx >= len(s.input) {
		return EOF
	}
	ch := s.input[s.idx]
	s.idx++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

// Rewind steps back over the last consumed character.
func (s *Scanner) Rewind() {
	if s.idx == 0 {
		return
	}
	s.idx--
	if s.input[s.idx] == '\n' {
		s.line--
		s.col = s.columnAt(s.idx)
	} else {
		s.col--
	}
}

// columnAt recomputes the column of position i by scanning back to the
// previous newline. Only needed when rewinding across a line break.
func (s *Scanner) columnAt(i int) int {
	col := 1
	for j := i - 1; j >= 0 && s.input[j] != '\n'; j-- {
		col++
	}
	return col
}

// SkipSpaces consumes blanks that may separate tokens on a line.
func (s *Scanner) SkipSpaces() {
	for {
		switch s.Peek() {
		case ' ', '\t', '\r':
			s.Eat()
		default:
			return
		}
	}
}

// SkipLine consumes everything up to, but not including, the next newline.
func (s *Scanner) SkipLine() {
	for ch := s.Peek(); ch != '\n' && ch != EOF; ch = s.Peek() {
		s.Eat()
	}
}

// Line returns the 1-based line of the next character.
func (s *Scanner) Line() int { return s.line }

// Column returns the 1-based rune column of the next character.
func (s *Scanner) Column() int { return s.col }
