// Package emit implements the Turtle serializer: it walks a frozen
// document's subject groups (already put in final order by
// package order) and writes indented Turtle text, nesting unlabelled
// blank nodes as [ ... ] and collections as ( ... ).
package emit

import (
	"fmt"
	"strings"

	"github.com/rdfprtr/prtr/internal/analyze"
	"github.com/rdfprtr/prtr/internal/collect"
	"github.com/rdfprtr/prtr/internal/litfmt"
	"github.com/rdfprtr/prtr/internal/order"
	"github.com/rdfprtr/prtr/rdf"
)

// inlineCollectionWidth is the threshold below which a collection's
// rendered elements are joined on one line rather than one element per
// line.
const inlineCollectionWidth = 40

// Config configures the emitter's surface choices, independent of term
// ordering (which the caller has already applied via package order).
type Config struct {
	// Indent is the whitespace unit used per nesting level.
	Indent string

	// NoSPARQLSyntax selects "@prefix"/"@base" over the default
	// SPARQL-style "PREFIX"/"BASE" prologue keywords.
	NoSPARQLSyntax bool

	// SingleLeafedNewlines selects the maximal newline policy
	// (-n/--single-leafed-new-lines): every predicate, object, and nested
	// "[" goes on its own line, unconditionally. When false (the
	// default), a predicate with exactly one non-multi-line object is
	// inlined on the predicate's line, and a subject with exactly one
	// predicate-object pair (neither multi-line) is inlined entirely on
	// the subject's line.
	SingleLeafedNewlines bool
}

// Emitter writes a frozen document as Turtle text.
type Emitter struct {
	doc        *rdf.Document
	analysis   *analyze.Result
	collection *collect.Result
	sorter     *order.Sorter
	cfg        Config
}

// New builds an Emitter from a document and the outputs of the prior
// pipeline stages.
func New(doc *rdf.Document, analysis *analyze.Result, collection *collect.Result, sorter *order.Sorter, cfg Config) *Emitter {
	return &Emitter{doc: doc, analysis: analysis, collection: collection, sorter: sorter, cfg: cfg}
}

// Emit renders the full document: prologue, then every top-level subject
// group in the order subjects is already sorted in.
func (e *Emitter) Emit(subjects []rdf.Term) string {
	var b strings.Builder
	e.writePrologue(&b)

	for _, subj := range subjects {
		e.writeSubjectGroup(&b, subj, 0)
	}

	out := b.String()
	out = strings.TrimRight(out, "\n") + "\n"
	return out
}

func (e *Emitter) writePrologue(b *strings.Builder) {
	prefixKw, baseKw := "@prefix", "@base"
	if !e.cfg.NoSPARQLSyntax {
		prefixKw, baseKw = "PREFIX", "BASE"
	}
	wrote := false
	for _, sym := range e.doc.PrefixSymbols() {
		fmt.Fprintf(b, "%s %s: <%s>", prefixKw, sym, e.doc.Prefixes()[sym])
		if e.cfg.NoSPARQLSyntax {
			b.WriteByte('.')
		}
		b.WriteByte('\n')
		wrote = true
	}
	if base := e.doc.Base(); base != nil {
		fmt.Fprintf(b, "%s <%s>", baseKw, base.IRI)
		if e.cfg.NoSPARQLSyntax {
			b.WriteByte('.')
		}
		b.WriteByte('\n')
		wrote = true
	}
	if wrote {
		b.WriteByte('\n')
	}
}

// predicatesOf returns the distinct predicates of subj's outgoing
// triples, sorted via the configured predicate order.
func (e *Emitter) predicatesOf(subj rdf.Term) []rdf.Term {
	seen := make(map[string]bool)
	var preds []rdf.Term
	for _, t := range e.doc.Triples() {
		if !t.Subj.Eq(subj) {
			continue
		}
		key := t.Pred.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		preds = append(preds, t.Pred)
	}
	return e.sorter.SortPredicates(preds)
}

// objectsOf returns subj's objects for predicate pred, resolved against
// the collection detector and sorted.
func (e *Emitter) objectsOf(subj, pred rdf.Term) []rdf.Term {
	var objs []rdf.Term
	for _, t := range e.doc.Triples() {
		if t.Subj.Eq(subj) && t.Pred.Eq(pred) {
			objs = append(objs, t.Obj)
		}
	}
	return e.sorter.SortObjects(objs)
}

// writeSubjectGroup writes subj's full "subject ... ." block at nesting
// depth. In the default (non-maximal) newline policy, a subject with
// exactly one predicate-object pair — neither of which is multi-line —
// collapses entirely onto the subject's own line.
func (e *Emitter) writeSubjectGroup(b *strings.Builder, subj rdf.Term, depth int) {
	preds := e.predicatesOf(subj)

	if !e.cfg.SingleLeafedNewlines {
		if inline, ok := e.inlineSubjectGroup(subj, preds, depth); ok {
			e.writeIndent(b, depth)
			b.WriteString(inline)
			b.WriteString(" .\n")
			return
		}
	}

	e.writeIndent(b, depth)
	b.WriteString(e.termText(subj))
	b.WriteByte('\n')
	for i, pred := range preds {
		term := ";"
		if i == len(preds)-1 {
			term = "."
		}
		e.writePredicateBlock(b, subj, pred, depth+1, term)
	}
}

// inlineSubjectGroup returns the "subject predicate object" text for the
// single-predicate-object-pair collapse case, or ok=false if subj doesn't
// qualify (more than one predicate, more than one object, or either
// rendering is multi-line).
func (e *Emitter) inlineSubjectGroup(subj rdf.Term, preds []rdf.Term, depth int) (string, bool) {
	if len(preds) != 1 {
		return "", false
	}
	objs := e.objectsOf(subj, preds[0])
	if len(objs) != 1 {
		return "", false
	}
	objText := e.objectText(objs[0], depth)
	if strings.Contains(objText, "\n") {
		return "", false
	}
	return e.termText(subj) + " " + e.predicateText(preds[0]) + " " + objText, true
}

// writePredicateBlock writes one predicate's objects at nesting depth.
// term is the punctuation that closes this predicate's last object line
// ("." or ";" for a top-level subject's final/non-final predicate, ""
// for a nested blank node property list, which needs no trailing
// punctuation of its own). In the default newline policy, a predicate
// with exactly one non-multi-line object is inlined on the predicate's
// own line; otherwise every object is written on its own line, indented
// one level further, followed directly by "," except the final object,
// which is followed by " "+term.
func (e *Emitter) writePredicateBlock(b *strings.Builder, subj, pred rdf.Term, depth int, term string) {
	objs := e.objectsOf(subj, pred)

	if !e.cfg.SingleLeafedNewlines && len(objs) == 1 {
		objText := e.objectText(objs[0], depth)
		if !strings.Contains(objText, "\n") {
			e.writeIndent(b, depth)
			b.WriteString(e.predicateText(pred))
			b.WriteByte(' ')
			b.WriteString(objText)
			writeTerminator(b, term)
			b.WriteByte('\n')
			return
		}
	}

	e.writeIndent(b, depth)
	b.WriteString(e.predicateText(pred))
	b.WriteByte('\n')
	for j, obj := range objs {
		e.writeIndent(b, depth+1)
		b.WriteString(e.objectText(obj, depth+1))
		if j == len(objs)-1 {
			writeTerminator(b, term)
		} else {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
}

// writeTerminator appends " "+term to b, or nothing when term is empty.
func writeTerminator(b *strings.Builder, term string) {
	if term == "" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(term)
}

func (e *Emitter) predicateText(pred rdf.Term) string {
	if n, ok := pred.(rdf.NamedNode); ok && n.IRI == rdf.RDFType.IRI {
		return "a"
	}
	return e.termText(pred)
}

// objectText renders obj, recursing into nested [ ... ] or ( ... ) blocks
// as needed.
func (e *Emitter) objectText(obj rdf.Term, depth int) string {
	resolved := e.collection.Resolve(obj)
	switch v := resolved.(type) {
	case rdf.Collection:
		return e.collectionText(v, depth)
	case rdf.BlankNode:
		info := e.analysis.Info(v.ID)
		if info != nil && info.Role == rdf.Nestable {
			return e.nestedBlankText(v, depth)
		}
		return e.termText(v)
	default:
		return e.termText(resolved)
	}
}

// nestedBlankText renders a Nestable blank node as [ ... ], empty as [].
// In the default newline policy, a node with exactly one predicate and
// one non-multi-line, non-nested object collapses to a single line
// "[ p o ]"; otherwise it is rendered as a multi-line property list with
// no trailing punctuation after its last predicate-object pair.
func (e *Emitter) nestedBlankText(bn rdf.BlankNode, depth int) string {
	preds := e.predicatesOf(bn)
	if len(preds) == 0 {
		return "[]"
	}

	if !e.cfg.SingleLeafedNewlines && len(preds) == 1 {
		objs := e.objectsOf(bn, preds[0])
		if len(objs) == 1 && !e.isNestedBlank(objs[0]) {
			objText := e.objectText(objs[0], depth+1)
			if !strings.Contains(objText, "\n") {
				return "[ " + e.predicateText(preds[0]) + " " + objText + " ]"
			}
		}
	}

	var b strings.Builder
	b.WriteString("[\n")
	for i, pred := range preds {
		term := ";"
		if i == len(preds)-1 {
			term = ""
		}
		e.writePredicateBlock(&b, bn, pred, depth+1, term)
	}
	e.writeIndent(&b, depth)
	b.WriteString("]")
	return b.String()
}

// isNestedBlank reports whether obj renders as a nested [ ... ] block.
func (e *Emitter) isNestedBlank(obj rdf.Term) bool {
	b, ok := obj.(rdf.BlankNode)
	if !ok {
		return false
	}
	info := e.analysis.Info(b.ID)
	return info != nil && info.Role == rdf.Nestable
}

// collectionText renders a Collection as ( ... ): inline if the joined
// elements (not counting the parentheses) fit within
// inlineCollectionWidth, one element per line otherwise.
func (e *Emitter) collectionText(c rdf.Collection, depth int) string {
	if len(c.Elements) == 0 {
		return "()"
	}

	parts := make([]string, len(c.Elements))
	for i, el := range c.Elements {
		parts[i] = e.objectText(el, depth+1)
	}

	joined := strings.Join(parts, " ")
	if !strings.Contains(joined, "\n") && len(joined) <= inlineCollectionWidth {
		return "(" + joined + ")"
	}

	var b strings.Builder
	b.WriteString("(\n")
	for _, p := range parts {
		e.writeIndent(&b, depth+1)
		b.WriteString(p)
		b.WriteByte('\n')
	}
	e.writeIndent(&b, depth)
	b.WriteString(")")
	return b.String()
}

func (e *Emitter) writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(e.cfg.Indent)
	}
}

// termText renders any non-nested, non-collection term: a prefixed name
// or <IRI> for a NamedNode, _:id for a labelled or otherwise
// unresolvable blank node, or a literal via package litfmt.
func (e *Emitter) termText(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.NamedNode:
		return e.namedNodeText(v)
	case rdf.Literal:
		return litfmt.Render(v, func(dt rdf.NamedNode) string { return e.namedNodeText(dt) })
	case rdf.BlankNode:
		return v.String()
	case rdf.Collection:
		return e.collectionText(v, 0)
	default:
		return t.String()
	}
}

func (e *Emitter) namedNodeText(n rdf.NamedNode) string {
	if sym, local, ok := e.bestPrefix(n.IRI); ok {
		return sym + ":" + local
	}
	if base := e.doc.Base(); base != nil && strings.HasPrefix(n.IRI, base.IRI) {
		return "<" + litfmt.QuoteIRI(strings.TrimPrefix(n.IRI, base.IRI)) + ">"
	}
	return "<" + litfmt.QuoteIRI(n.IRI) + ">"
}

func (e *Emitter) bestPrefix(iri string) (sym, local string, ok bool) {
	bestLen := -1
	for sym2, ns := range e.doc.Prefixes() {
		if strings.HasPrefix(iri, ns) && len(ns) > bestLen {
			bestLen = len(ns)
			sym, local, ok = sym2, iri[len(ns):], true
		}
	}
	return sym, local, ok
}
