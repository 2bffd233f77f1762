package parse

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rdfprtr/prtr/rdf"
)

// NTriples parses src as N-Triples (no prefixes, no relative IRIs, one
// statement per line) and returns a frozen rdf.Document with no prefix
// bindings and no base.
func NTriples(r io.Reader) (*rdf.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var triples []rdf.Triple
	bnodes := make(map[string]rdf.BlankNode)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := parseNTriplesLine(line, bnodes)
		if err != nil {
			return nil, &SyntaxError{Line: lineNo, Msg: err.Error()}
		}
		triples = append(triples, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rdf.Freeze(nil, nil, triples)
}

func parseNTriplesLine(line string, bnodes map[string]rdf.BlankNode) (rdf.Triple, error) {
	s := newLineScanner(line)

	subj, err := s.term()
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("subject: %w", err)
	}
	s.skipWS()
	pred, err := s.term()
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("predicate: %w", err)
	}
	s.skipWS()
	obj, err := s.term()
	if err != nil {
		return rdf.Triple{}, fmt.Errorf("object: %w", err)
	}
	s.skipWS()
	if !s.consumeDot() {
		return rdf.Triple{}, fmt.Errorf("statement not terminated by '.'")
	}

	return rdf.Triple{
		Subj: resolveNTriplesTerm(subj, bnodes),
		Pred: resolveNTriplesTerm(pred, bnodes),
		Obj:  resolveNTriplesTerm(obj, bnodes),
	}, nil
}

func resolveNTriplesTerm(t ntTerm, bnodes map[string]rdf.BlankNode) rdf.Term {
	switch t.kind {
	case ntIRI:
		return rdf.NamedNode{IRI: t.text}
	case ntBlank:
		b, ok := bnodes[t.text]
		if !ok {
			b = rdf.BlankNode{ID: t.text}
			bnodes[t.text] = b
		}
		return b
	case ntLiteral:
		l := rdf.Literal{Lexical: t.text, DataType: rdf.XSDString}
		if t.lang != "" {
			l.Lang = t.lang
			l.DataType = rdf.NamedNode{}
		} else if t.datatype != "" {
			l.DataType = rdf.NamedNode{IRI: t.datatype}
		}
		return l
	default:
		return nil
	}
}

type ntKind int

const (
	ntIRI ntKind = iota
	ntBlank
	ntLiteral
)

type ntTerm struct {
	kind     ntKind
	text     string
	lang     string
	datatype string
}

// lineScanner is a minimal hand-rolled scanner over one N-Triples
// statement line; it is intentionally simpler than the Turtle lexer since
// N-Triples has no prefixes, no nesting, and one statement per line.
type lineScanner struct {
	s   string
	pos int
}

func newLineScanner(s string) *lineScanner { return &lineScanner{s: s} }

func (s *lineScanner) skipWS() {
	for s.pos < len(s.s) && (s.s[s.pos] == ' ' || s.s[s.pos] == '\t') {
		s.pos++
	}
}

func (s *lineScanner) consumeDot() bool {
	s.skipWS()
	if s.pos < len(s.s) && s.s[s.pos] == '.' {
		s.pos++
		return true
	}
	return false
}

func (s *lineScanner) term() (ntTerm, error) {
	s.skipWS()
	if s.pos >= len(s.s) {
		return ntTerm{}, fmt.Errorf("unexpected end of statement")
	}
	switch s.s[s.pos] {
	case '<':
		return s.iri()
	case '_':
		return s.blank()
	case '"':
		return s.literal()
	default:
		return ntTerm{}, fmt.Errorf("unexpected character %q", s.s[s.pos])
	}
}

func (s *lineScanner) iri() (ntTerm, error) {
	end := strings.IndexByte(s.s[s.pos+1:], '>')
	if end < 0 {
		return ntTerm{}, fmt.Errorf("unterminated IRI reference")
	}
	raw := s.s[s.pos+1 : s.pos+1+end]
	s.pos += end + 2
	iri, err := unescapeIRI(raw)
	if err != nil {
		return ntTerm{}, err
	}
	return ntTerm{kind: ntIRI, text: iri}, nil
}

func (s *lineScanner) blank() (ntTerm, error) {
	if !strings.HasPrefix(s.s[s.pos:], "_:") {
		return ntTerm{}, fmt.Errorf("malformed blank node label")
	}
	start := s.pos + 2
	end := start
	for end < len(s.s) && isNameChar(rune(s.s[end])) {
		end++
	}
	s.pos = end
	return ntTerm{kind: ntBlank, text: s.s[start:end]}, nil
}

func (s *lineScanner) literal() (ntTerm, error) {
	end, err := scanQuoted(s.s, s.pos+1)
	if err != nil {
		return ntTerm{}, err
	}
	raw := s.s[s.pos+1 : end]
	s.pos = end + 1
	lex, err := unescapeString(raw)
	if err != nil {
		return ntTerm{}, err
	}
	t := ntTerm{kind: ntLiteral, text: lex}

	switch {
	case s.pos < len(s.s) && s.s[s.pos] == '@':
		s.pos++
		start := s.pos
		for s.pos < len(s.s) && (isNameChar(rune(s.s[s.pos])) || s.s[s.pos] == '-') {
			s.pos++
		}
		t.lang = s.s[start:s.pos]
	case strings.HasPrefix(s.s[s.pos:], "^^"):
		s.pos += 2
		if s.pos >= len(s.s) || s.s[s.pos] != '<' {
			return ntTerm{}, fmt.Errorf("expected IRI after '^^'")
		}
		dt, err := s.iri()
		if err != nil {
			return ntTerm{}, err
		}
		t.datatype = dt.text
	}
	return t, nil
}

// scanQuoted returns the index of the closing unescaped '"' starting the
// scan at pos (just past the opening quote).
func scanQuoted(s string, pos int) (int, error) {
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i, nil
		}
	}
	return 0, fmt.Errorf("unterminated string literal")
}
