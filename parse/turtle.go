package parse

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/rdfprtr/prtr/rdf"
)

// Turtle parses src as Turtle (including its SPARQL-style @prefix/PREFIX
// and @base/BASE directive variants) and returns a frozen rdf.Document.
// Prefix-symbol rebinding is detected during parsing and folded into the
// same *rdf.DocumentError Freeze itself would raise for a namespace
// collision, so callers see every document-consistency violation through
// one error type.
func Turtle(r io.Reader) (doc *rdf.Document, err error) {
	p := &turtleParser{
		l:        newLexer(r),
		prefixes: make(map[string]string),
		prefixNS: make(map[string][]string),
	}
	defer p.recover(&err)
	p.parseDocument()
	return rdf.Freeze(p.prefixes, p.base, p.triples, p.violations...)
}

type turtleParser struct {
	l         *lexer
	tokens    [3]token
	peekCount int

	prefixes map[string]string
	prefixNS map[string][]string // allocated but never read; rebinding is detected against prefixes
	base     *rdf.NamedNode

	bnodeN int

	triples    []rdf.Triple
	violations []rdf.Violation
}

func (p *turtleParser) next() token {
	if p.peekCount > 0 {
		p.peekCount--
	} else {
		p.tokens[0] = p.nextFromLexer()
	}
	return p.tokens[p.peekCount]
}

func (p *turtleParser) nextFromLexer() token {
	t := <-p.l.tokens
	if t.typ == tokenError {
		p.errorf(t.line, t.col, "%s", t.text)
	}
	return t
}

func (p *turtleParser) peek() token {
	if p.peekCount > 0 {
		return p.tokens[p.peekCount-1]
	}
	p.peekCount = 1
	p.tokens[0] = p.nextFromLexer()
	return p.tokens[0]
}

func (p *turtleParser) backup() { p.peekCount++ }

func (p *turtleParser) errorf(line, col int, format string, args ...interface{}) {
	panic(&SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)})
}

func (p *turtleParser) unexpected(t token, ctx string) {
	p.errorf(t.line, t.col, "unexpected token %q as %s", t.text, ctx)
}

func (p *turtleParser) recover(errp *error) {
	e := recover()
	if e == nil {
		return
	}
	if _, ok := e.(runtime.Error); ok {
		panic(e)
	}
	if se, ok := e.(*SyntaxError); ok {
		*errp = se
		return
	}
	*errp = e.(error)
}

func (p *turtleParser) newBlankNode() rdf.BlankNode {
	id := fmt.Sprintf("g%d", p.bnodeN)
	p.bnodeN++
	return rdf.BlankNode{ID: id}
}

func (p *turtleParser) parseDocument() {
	for {
		t := p.next()
		switch t.typ {
		case tokenEOF:
			return
		case tokenPrefixKW:
			p.parsePrefixDirective(true)
		case tokenSparqlPrefixKW:
			p.parsePrefixDirective(false)
		case tokenBaseKW:
			p.parseBaseDirective(true)
		case tokenSparqlBaseKW:
			p.parseBaseDirective(false)
		default:
			p.backup()
			p.parseTriples()
		}
	}
}

// parsePrefixDirective parses "@prefix sym: <iri> ." or "PREFIX sym: <iri>"
// (no trailing dot in the SPARQL-style form, but we tolerate one either
// way).
func (p *turtleParser) parsePrefixDirective(requireDot bool) {
	sym, iri := p.parsePrefixLabelAndIRI()
	if existing, seen := p.prefixes[sym]; seen && existing != iri {
		p.violations = append(p.violations, rdf.Violation{Kind: rdf.DuplicatePrefix, Symbol: sym, Namespace: iri})
	}
	p.prefixes[sym] = iri
	p.consumeOptionalDirectiveDot(requireDot)
}

func (p *turtleParser) parseBaseDirective(requireDot bool) {
	t := p.next()
	if t.typ != tokenIRIAbs {
		p.unexpected(t, "@base IRI")
	}
	iri := p.resolveIRI(t.text)
	p.base = &rdf.NamedNode{IRI: iri}
	p.consumeOptionalDirectiveDot(requireDot)
}

func (p *turtleParser) consumeOptionalDirectiveDot(requireDot bool) {
	t := p.next()
	if t.typ == tokenDot {
		return
	}
	p.backup()
	if requireDot {
		p.unexpected(p.next(), "'.' terminating directive")
	}
}

func (p *turtleParser) parsePrefixLabelAndIRI() (sym, iri string) {
	t := p.next()
	if t.typ != tokenIRISuffix {
		p.unexpected(t, "prefix label")
	}
	parts := strings.SplitN(t.text, "\x00", 2)
	if len(parts) != 2 || parts[1] != "" {
		p.errorf(t.line, t.col, "malformed prefix label %q", t.text)
	}
	sym = parts[0]

	it := p.next()
	if it.typ != tokenIRIAbs {
		p.unexpected(it, "prefix IRI")
	}
	return sym, p.resolveIRI(it.text)
}

// parseTriples parses "subject predicateObjectList '.'" and appends every
// resulting triple to p.triples.
func (p *turtleParser) parseTriples() {
	subj := p.parseSubject()
	p.parsePredicateObjectList(subj)
	t := p.next()
	if t.typ != tokenDot {
		p.unexpected(t, "'.' terminating a triples block")
	}
}

func (p *turtleParser) parseSubject() rdf.Term {
	t := p.next()
	switch t.typ {
	case tokenIRIAbs:
		return rdf.NamedNode{IRI: p.resolveIRI(t.text)}
	case tokenIRISuffix:
		return p.resolvePrefixedName(t)
	case tokenBlankLabel:
		return rdf.BlankNode{ID: "l_" + t.text}
	case tokenLBracket:
		return p.parseBlankNodePropertyList()
	case tokenLParen:
		return p.parseCollection()
	default:
		p.unexpected(t, "subject")
		return nil
	}
}

// parsePredicateObjectList parses "pred objectList (';' pred objectList)*"
// for subj, including a trailing ';' with nothing after it (Turtle allows
// a stray ';' immediately before '.' or ']').
func (p *turtleParser) parsePredicateObjectList(subj rdf.Term) {
	for {
		pred := p.parsePredicate()
		p.parseObjectList(subj, pred)

		t := p.next()
		if t.typ != tokenSemicolon {
			p.backup()
			return
		}
		// allow one or more trailing semicolons before the list ends
		for {
			nt := p.peek()
			if nt.typ != tokenSemicolon {
				break
			}
			p.next()
		}
		switch p.peek().typ {
		case tokenDot, tokenRBracket:
			return
		}
	}
}

func (p *turtleParser) parsePredicate() rdf.Term {
	t := p.next()
	switch t.typ {
	case tokenRDFType:
		return rdf.RDFType
	case tokenIRIAbs:
		return rdf.NamedNode{IRI: p.resolveIRI(t.text)}
	case tokenIRISuffix:
		return p.resolvePrefixedName(t)
	default:
		p.unexpected(t, "predicate")
		return nil
	}
}

func (p *turtleParser) parseObjectList(subj, pred rdf.Term) {
	for {
		obj := p.parseObject()
		p.triples = append(p.triples, rdf.Triple{Subj: subj, Pred: pred, Obj: obj})

		t := p.next()
		if t.typ != tokenComma {
			p.backup()
			return
		}
	}
}

func (p *turtleParser) parseObject() rdf.Term {
	t := p.next()
	switch t.typ {
	case tokenIRIAbs:
		return rdf.NamedNode{IRI: p.resolveIRI(t.text)}
	case tokenIRISuffix:
		return p.resolvePrefixedName(t)
	case tokenBlankLabel:
		return rdf.BlankNode{ID: "l_" + t.text}
	case tokenLBracket:
		return p.parseBlankNodePropertyList()
	case tokenLParen:
		return p.parseCollection()
	case tokenLiteral:
		return p.parseLiteralValue(t, false)
	case tokenLiteral3:
		return p.parseLiteralValue(t, true)
	case tokenInteger:
		return rdf.Literal{Lexical: t.text, DataType: rdf.XSDInteger}
	case tokenDecimal:
		return rdf.Literal{Lexical: t.text, DataType: rdf.XSDDecimal}
	case tokenDouble:
		return rdf.Literal{Lexical: t.text, DataType: rdf.XSDDouble}
	case tokenBooleanTrue:
		return rdf.Literal{Lexical: "true", DataType: rdf.XSDBoolean}
	case tokenBooleanFalse:
		return rdf.Literal{Lexical: "false", DataType: rdf.XSDBoolean}
	default:
		p.unexpected(t, "object")
		return nil
	}
}

func (p *turtleParser) parseLiteralValue(t token, triple bool) rdf.Term {
	lex, err := unescapeString(t.text)
	if err != nil {
		p.errorf(t.line, t.col, "%s", err)
	}

	nt := p.next()
	switch nt.typ {
	case tokenLangTag:
		return rdf.Literal{Lexical: lex, Lang: nt.text}
	case tokenDataTypeMarker:
		dtTok := p.next()
		var dt rdf.NamedNode
		switch dtTok.typ {
		case tokenIRIAbs:
			dt = rdf.NamedNode{IRI: p.resolveIRI(dtTok.text)}
		case tokenIRISuffix:
			n, ok := p.resolvePrefixedName(dtTok).(rdf.NamedNode)
			if !ok {
				p.unexpected(dtTok, "literal datatype IRI")
			}
			dt = n
		default:
			p.unexpected(dtTok, "literal datatype IRI")
		}
		return rdf.Literal{Lexical: lex, DataType: dt}
	default:
		p.backup()
		return rdf.Literal{Lexical: lex, DataType: rdf.XSDString}
	}
}

// parseBlankNodePropertyList parses the body of a "[ ... ]" after the
// opening '[' has already been consumed: either an immediately-closing
// anonymous blank node, or a nested predicateObjectList whose triples are
// attached to a freshly allocated blank node.
func (p *turtleParser) parseBlankNodePropertyList() rdf.Term {
	if p.peek().typ == tokenRBracket {
		p.next()
		return p.newBlankNode()
	}
	bn := p.newBlankNode()
	p.parsePredicateObjectList(bn)
	t := p.next()
	if t.typ != tokenRBracket {
		p.unexpected(t, "']' closing a blank node property list")
	}
	return bn
}

// parseCollection parses the body of a "( ... )" after the opening '('
// has already been consumed, synthesizing the rdf:first/rdf:rest chain
// the collection detector will later recognize and fold.
func (p *turtleParser) parseCollection() rdf.Term {
	if p.peek().typ == tokenRParen {
		p.next()
		return rdf.RDFNil
	}

	var heads []rdf.BlankNode
	var elems []rdf.Term
	for p.peek().typ != tokenRParen {
		heads = append(heads, p.newBlankNode())
		elems = append(elems, p.parseObject())
	}
	p.next() // consume ')'

	for i, h := range heads {
		p.triples = append(p.triples, rdf.Triple{Subj: h, Pred: rdf.RDFFirst, Obj: elems[i]})
		var rest rdf.Term = rdf.RDFNil
		if i+1 < len(heads) {
			rest = heads[i+1]
		}
		p.triples = append(p.triples, rdf.Triple{Subj: h, Pred: rdf.RDFRest, Obj: rest})
	}
	return heads[0]
}

func (p *turtleParser) resolvePrefixedName(t token) rdf.Term {
	parts := strings.SplitN(t.text, "\x00", 2)
	if len(parts) != 2 {
		p.errorf(t.line, t.col, "malformed prefixed name %q", t.text)
	}
	sym, suffix := parts[0], parts[1]
	ns, ok := p.prefixes[sym]
	if !ok {
		p.errorf(t.line, t.col, "undefined prefix %q", sym)
	}
	suffix, err := unescapeString(strings.ReplaceAll(suffix, `\`, ""))
	if err != nil {
		p.errorf(t.line, t.col, "malformed prefixed name %q: %v", t.text, err)
	}
	return rdf.NamedNode{IRI: ns + suffix}
}

// resolveIRI unescapes iri's numeric escapes and, if it has no scheme and
// a base is in effect, resolves it relative to that base by simple
// prefix-path concatenation (the common case Turtle documents rely on; it
// does not implement full RFC 3986 dot-segment removal).
func (p *turtleParser) resolveIRI(iri string) string {
	iri, err := unescapeIRI(iri)
	if err != nil {
		panic(&SyntaxError{Msg: err.Error()})
	}
	if p.base == nil || iri == "" {
		return iri
	}
	if colon := strings.IndexByte(iri, ':'); colon > 0 && !strings.ContainsAny(iri[:colon], "/?#") {
		return iri // has a scheme
	}
	switch {
	case strings.HasPrefix(iri, "//"):
		if colon := strings.IndexByte(p.base.IRI, ':'); colon >= 0 {
			return p.base.IRI[:colon+1] + iri
		}
		return iri
	case strings.HasPrefix(iri, "#"):
		return strings.TrimRight(strings.SplitN(p.base.IRI, "#", 2)[0], "") + iri
	case strings.HasPrefix(iri, "/"):
		if idx := strings.Index(p.base.IRI, "://"); idx >= 0 {
			if slash := strings.Index(p.base.IRI[idx+3:], "/"); slash >= 0 {
				return p.base.IRI[:idx+3+slash] + iri
			}
		}
		return p.base.IRI + iri
	default:
		dir := p.base.IRI
		if i := strings.LastIndex(dir, "/"); i >= 0 {
			dir = dir[:i+1]
		}
		return dir + iri
	}
}
