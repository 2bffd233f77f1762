// Package collect implements the collection detector: it recognizes
// well-formed, locally-owned rdf:List chains and marks them for
// ( ... ) rendering, synthesizing the rdf.Collection term the rest of the
// pipeline consumes in place of the chain's head blank node.
package collect

import (
	"github.com/rdfprtr/prtr/internal/analyze"
	"github.com/rdfprtr/prtr/rdf"
)

// Result records every rdf:List chain the detector recognized in a
// document.
type Result struct {
	heads    map[string]rdf.Collection // head blank node ID -> synthesized Collection
	consumed map[string]bool           // head and intermediate node IDs folded into a Collection
}

// Resolve returns the rdf.Collection standing in for t if t is a blank
// node recognized as a collection head, or t unchanged otherwise. Callers
// (the sorter and emitter) should call Resolve on every term before
// inspecting its kind.
func (r *Result) Resolve(t rdf.Term) rdf.Term {
	b, ok := t.(rdf.BlankNode)
	if !ok {
		return t
	}
	if c, ok := r.heads[b.ID]; ok {
		return c
	}
	return t
}

// IsConsumed reports whether id names a blank node folded into some
// Collection — either the chain's head or one of its intermediate
// nodes — and so must never be emitted as its own subject group or
// nested [ ... ] block.
func (r *Result) IsConsumed(id string) bool { return r.consumed[id] }

// Detect runs the collection detector over doc using the reference
// analyzer's Result for in-degree and role information.
func Detect(doc *rdf.Document, analysis *analyze.Result) *Result {
	result := &Result{
		heads:    make(map[string]rdf.Collection),
		consumed: make(map[string]bool),
	}

	for _, t := range doc.Triples() {
		head, ok := t.Subj.(rdf.BlankNode)
		if !ok {
			continue
		}
		if _, done := result.heads[head.ID]; done {
			continue
		}
		if result.consumed[head.ID] {
			continue
		}
		if elements, members, ok := tryChain(head, analysis); ok {
			result.heads[head.ID] = rdf.Collection{Elements: elements}
			for id := range members {
				result.consumed[id] = true
			}
			analysis.Info(head.ID).Role = rdf.CollectionHead
		}
	}

	return result
}

// tryChain attempts to walk a complete rdf:List chain starting at head,
// returning the collected elements and the set of node IDs (head plus
// every intermediate) consumed by the chain on success.
func tryChain(head rdf.BlankNode, analysis *analyze.Result) (elements []rdf.Term, members map[string]bool, ok bool) {
	headInfo := analysis.Info(head.ID)
	if headInfo == nil || headInfo.InDegree > 1 {
		return nil, nil, false
	}

	members = make(map[string]bool)
	var elems []rdf.Term

	current := head
	for i := 0; ; i++ {
		if members[current.ID] {
			// cycle: a well-formed list never revisits a node.
			return nil, nil, false
		}
		members[current.ID] = true

		info := analysis.Info(current.ID)
		if info == nil {
			return nil, nil, false
		}
		if i > 0 {
			if info.InDegree != 1 || info.Role != rdf.Nestable {
				return nil, nil, false
			}
		}

		first, rest, ok := exactlyFirstAndRest(info.OutgoingTriples)
		if !ok {
			return nil, nil, false
		}
		elems = append(elems, first)

		next, isBlank := rest.(rdf.BlankNode)
		if !isBlank {
			if n, ok := rest.(rdf.NamedNode); ok && n.IRI == rdf.RDFNil.IRI {
				return elems, members, true
			}
			return nil, nil, false
		}
		current = next
	}
}

// exactlyFirstAndRest reports whether triples is exactly one rdf:first
// triple and one rdf:rest triple (in either order) and no others apart
// from prtr:sortingId triples, returning the first value and the rest
// value. A prtr:sortingId triple on a chain node is ignored here and, once
// the chain folds into a Collection, is not emitted.
func exactlyFirstAndRest(triples []rdf.Triple) (first, rest rdf.Term, ok bool) {
	var haveFirst, haveRest bool
	for _, t := range triples {
		p, isNamed := t.Pred.(rdf.NamedNode)
		if !isNamed {
			return nil, nil, false
		}
		switch p.IRI {
		case rdf.RDFFirst.IRI:
			if haveFirst {
				return nil, nil, false
			}
			haveFirst = true
			first = t.Obj
		case rdf.RDFRest.IRI:
			if haveRest {
				return nil, nil, false
			}
			haveRest = true
			rest = t.Obj
		case rdf.PrtrSortingID.IRI:
		default:
			return nil, nil, false
		}
	}
	if !haveFirst || !haveRest {
		return nil, nil, false
	}
	return first, rest, true
}
