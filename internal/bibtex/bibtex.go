// Package bibtex parses BibTeX bibliography files into citation-keyed
// entries. The parser is deliberately tolerant: a malformed entry produces a
// warning and scanning resumes at the next @ record, so one bad entry never
// sinks the whole bibliography.
package bibtex

import (
	"fmt"
	"strings"
)

// Entry is a single bibliography record.
type Entry struct {
	Type   string // entry type, lowercased: "article", "inproceedings", ...
	Key    string // citation key, unique within a file
	Fields map[string]string
}

// Field returns the named field value, or "" if absent.
// Field names are matched case-insensitively.
func (e Entry) Field(name string) string {
	return e.Fields[strings.ToLower(name)]
}

// Warning describes a recoverable problem found while parsing.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Parse scans BibTeX source and returns entries in source order along with
// any warnings. Text outside @ records is ignored, as BibTeX does. @comment
// and @preamble records are skipped; @string macros are not supported and
// produce a warning.
func Parse(data []byte) ([]Entry, []Warning) {
	s := &scanner{src: string(data), line: 1}

	var entries []Entry
	var warnings []Warning

	for {
		if !s.seek('@') {
			break
		}
		s.next() // consume '@'

		// Remember where this record starts so a malformed one can be
		// rewound: its value scan may have swallowed later records.
		resyncPos, resyncLine := s.pos, s.line

		entry, err := s.parseEntry()
		if err != nil {
			warnings = append(warnings, Warning{Line: resyncLine, Message: err.Error()})
			s.pos, s.line = resyncPos, resyncLine
			continue
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}

	return entries, warnings
}

// scanner walks BibTeX source tracking line numbers.
type scanner struct {
	src  string
	pos  int
	line int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte { return s.src[s.pos] }

func (s *scanner) next() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
	}
	return c
}

// seek advances to the next occurrence of c, returning false at EOF.
func (s *scanner) seek(c byte) bool {
	for !s.eof() {
		if s.peek() == c {
			return true
		}
		s.next()
	}
	return false
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		switch s.peek() {
		case ' ', '\t', '\r', '\n':
			s.next()
		default:
			return
		}
	}
}

func isIdentChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == ':' || c == '.' || c == '+':
		return true
	}
	return false
}

func (s *scanner) readIdent() string {
	start := s.pos
	for !s.eof() && isIdentChar(s.peek()) {
		s.next()
	}
	return s.src[start:s.pos]
}

// parseEntry parses one record after the leading '@'. A nil entry with nil
// error means the record was a directive to skip (@comment, @preamble).
func (s *scanner) parseEntry() (*Entry, error) {
	entryType := strings.ToLower(s.readIdent())
	if entryType == "" {
		return nil, fmt.Errorf("missing entry type after @")
	}

	s.skipSpace()
	if s.eof() || s.peek() != '{' {
		return nil, fmt.Errorf("@%s: expected { after entry type", entryType)
	}
	s.next() // consume '{'

	switch entryType {
	case "comment", "preamble":
		if err := s.skipBalanced(); err != nil {
			return nil, fmt.Errorf("@%s: %v", entryType, err)
		}
		return nil, nil
	case "string":
		if err := s.skipBalanced(); err != nil {
			return nil, fmt.Errorf("@string: %v", err)
		}
		return nil, fmt.Errorf("@string macros are not supported; record skipped")
	}

	s.skipSpace()
	key := s.readIdent()
	if key == "" {
		return nil, fmt.Errorf("@%s: missing citation key", entryType)
	}

	entry := &Entry{Type: entryType, Key: key, Fields: map[string]string{}}

	s.skipSpace()
	for !s.eof() && s.peek() == ',' {
		s.next() // consume ','
		s.skipSpace()
		if !s.eof() && s.peek() == '}' {
			break // trailing comma before closing brace
		}

		name := strings.ToLower(s.readIdent())
		if name == "" {
			return nil, fmt.Errorf("@%s{%s}: missing field name", entryType, key)
		}

		s.skipSpace()
		if s.eof() || s.peek() != '=' {
			return nil, fmt.Errorf("@%s{%s}: expected = after field %q", entryType, key, name)
		}
		s.next() // consume '='

		value, err := s.readValue()
		if err != nil {
			return nil, fmt.Errorf("@%s{%s}: field %q: %v", entryType, key, name, err)
		}
		entry.Fields[name] = normalizeValue(value)
		s.skipSpace()
	}

	s.skipSpace()
	if s.eof() || s.peek() != '}' {
		return nil, fmt.Errorf("@%s{%s}: unterminated entry", entryType, key)
	}
	s.next() // consume '}'

	return entry, nil
}

// readValue reads a field value: braced, quoted, or bare, with optional
// # concatenation between parts.
func (s *scanner) readValue() (string, error) {
	var parts []string
	for {
		s.skipSpace()
		if s.eof() {
			return "", fmt.Errorf("unexpected end of input")
		}

		var part string
		var err error
		switch s.peek() {
		case '{':
			s.next()
			part, err = s.readBraced()
		case '"':
			s.next()
			part, err = s.readQuoted()
		default:
			part = s.readIdent()
			if part == "" {
				err = fmt.Errorf("expected value")
			}
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, part)

		s.skipSpace()
		if s.eof() || s.peek() != '#' {
			return strings.Join(parts, ""), nil
		}
		s.next() // consume '#', read the next part
	}
}

// readBraced reads until the matching close brace, tracking nesting.
// The opening brace has already been consumed.
func (s *scanner) readBraced() (string, error) {
	start := s.pos
	depth := 1
	for !s.eof() {
		switch s.next() {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s.src[start : s.pos-1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated braced value")
}

// readQuoted reads until the closing double quote.
// The opening quote has already been consumed.
func (s *scanner) readQuoted() (string, error) {
	start := s.pos
	for !s.eof() {
		if s.next() == '"' {
			return s.src[start : s.pos-1], nil
		}
	}
	return "", fmt.Errorf("unterminated quoted value")
}

// skipBalanced consumes input until the brace opened before the call closes.
func (s *scanner) skipBalanced() error {
	depth := 1
	for !s.eof() {
		switch s.next() {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return fmt.Errorf("unterminated record")
}

// normalizeValue collapses internal whitespace and resolves the TeX escapes
// that show up in titles (\&, \#, \%, \_).
func normalizeValue(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	replacer := strings.NewReplacer(`\&`, "&", `\#`, "#", `\%`, "%", `\_`, "_")
	return replacer.Replace(v)
}
