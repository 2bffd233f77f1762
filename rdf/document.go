package rdf

import "sort"

// Document is the frozen, in-memory representation of a parsed RDF
// document: its prefix bindings, optional base IRI, and triple set.
//
// A Document is built once by a producer (see package parse) and never
// mutated afterwards; the reference analyzer, collection detector and
// sorter derive read-only structures from it, and the emitter consumes
// those structures. There is no exported mutator on a frozen Document.
type Document struct {
	prefixes map[string]string // prefix symbol -> namespace IRI
	base     *NamedNode
	triples  []Triple
}

// Prefixes returns the document's prefix symbol -> namespace IRI bindings.
// The returned map must not be mutated.
func (d *Document) Prefixes() map[string]string { return d.prefixes }

// Base returns the document's base IRI, or nil if none was declared.
func (d *Document) Base() *NamedNode { return d.base }

// Triples returns the document's triple set. The returned slice must not
// be mutated.
func (d *Document) Triples() []Triple { return d.triples }

// PrefixSymbols returns the document's prefix symbols in lexicographic
// order, the order the emitter's prologue uses.
func (d *Document) PrefixSymbols() []string {
	syms := make([]string, 0, len(d.prefixes))
	for s := range d.prefixes {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}

// Freeze validates prefixes, base and triples against document-consistency
// invariants (no duplicate prefix binding, no namespace claimed by two
// symbols, no base/namespace collision) and, if they hold, returns a
// frozen Document. On violation it
// returns every violation found (not just the first) wrapped in a single
// *DocumentError, so a caller can report them all in one diagnostic pass.
//
// extra lets a producer (such as package parse, which must detect a prefix
// symbol rebound to a second namespace before it can even populate
// prefixes as a plain map) fold violations it already found into the same
// aggregated error.
func Freeze(prefixes map[string]string, base *NamedNode, triples []Triple, extra ...Violation) (*Document, error) {
	violations := append([]Violation(nil), extra...)

	nsToSymbols := make(map[string][]string, len(prefixes))
	for sym, ns := range prefixes {
		nsToSymbols[ns] = append(nsToSymbols[ns], sym)
	}
	seenNS := make(map[string]bool)
	for ns, syms := range nsToSymbols {
		if len(syms) > 1 {
			sort.Strings(syms)
			for _, sym := range syms {
				violations = append(violations, Violation{Kind: DuplicateNamespace, Symbol: sym, Namespace: ns})
			}
		}
		seenNS[ns] = true
	}
	if base != nil {
		if syms, ok := nsToSymbols[base.IRI]; ok {
			sort.Strings(syms)
			for _, sym := range syms {
				violations = append(violations, Violation{Kind: BaseNamespaceCollision, Symbol: sym, Namespace: base.IRI})
			}
		}
	}

	if len(violations) > 0 {
		return nil, &DocumentError{Violations: violations}
	}

	cp := make(map[string]string, len(prefixes))
	for k, v := range prefixes {
		cp[k] = v
	}
	ts := make([]Triple, len(triples))
	copy(ts, triples)

	return &Document{prefixes: cp, base: base, triples: ts}, nil
}
