// Package analyze implements the reference analyzer: for every blank
// node in a frozen rdf.Document it computes in-degree, incoming and
// outgoing edges, cycle membership, and assigns a rdf.Role.
package analyze

import "github.com/rdfprtr/prtr/rdf"

// Result is the reference analyzer's output: one rdf.BlankNodeInfo per
// blank node that appears as a subject or object of some triple in the
// document, keyed by blank node ID.
type Result struct {
	infos map[string]*rdf.BlankNodeInfo
}

// Info returns the BlankNodeInfo for id, or nil if id never appears in
// the document.
func (r *Result) Info(id string) *rdf.BlankNodeInfo { return r.infos[id] }

// All returns every BlankNodeInfo the analyzer produced. The returned map
// must not be mutated.
func (r *Result) All() map[string]*rdf.BlankNodeInfo { return r.infos }

// Analyze runs the reference analyzer over doc. labelAll forces every
// blank node to role rdf.Labelled, implementing the
// -l/--label-all-blank-nodes CLI flag.
func Analyze(doc *rdf.Document, labelAll bool) *Result {
	infos := make(map[string]*rdf.BlankNodeInfo)

	get := func(b rdf.BlankNode) *rdf.BlankNodeInfo {
		info, ok := infos[b.ID]
		if !ok {
			info = &rdf.BlankNodeInfo{Node: b}
			infos[b.ID] = info
		}
		return info
	}

	for _, t := range doc.Triples() {
		if subj, ok := t.Subj.(rdf.BlankNode); ok {
			info := get(subj)
			info.OutgoingTriples = append(info.OutgoingTriples, t)

			if isSortingID(t) {
				if lit, ok := t.Obj.(rdf.Literal); ok {
					l := lit
					info.SortingID = &l
				}
			}
		}
		if obj, ok := t.Obj.(rdf.BlankNode); ok {
			info := get(obj)
			info.InDegree++
			info.IncomingRefs = append(info.IncomingRefs, rdf.Ref{Subj: t.Subj, Pred: t.Pred})
		}
	}

	cyclic := findCycles(infos)

	for id, info := range infos {
		info.Role = assignRole(info, cyclic[id], labelAll)
	}

	return &Result{infos: infos}
}

func isSortingID(t rdf.Triple) bool {
	p, ok := t.Pred.(rdf.NamedNode)
	return ok && p.IRI == rdf.PrtrSortingID.IRI
}

// assignRole assigns Nestable or Labelled to every blank node. The
// collection detector (internal/collect) later overrides a chain head's
// Role to CollectionHead once it confirms the chain.
func assignRole(info *rdf.BlankNodeInfo, cyclic, labelAll bool) rdf.Role {
	switch {
	case labelAll:
		return rdf.Labelled
	case cyclic:
		return rdf.Labelled
	case info.InDegree == 0 && len(info.OutgoingTriples) > 0:
		// top-level orphan: never referenced, but has content of its own.
		return rdf.Labelled
	case info.InDegree >= 2:
		return rdf.Labelled
	default:
		return rdf.Nestable
	}
}

// findCycles returns the set of blank node IDs that participate in a
// cycle reachable through blank-node-only edges (subject and object both
// blank nodes), via depth-first search with back-edge detection. Only
// the nodes actually on the cycle are marked: an ancestor that merely
// reaches a cycle further down the stack, without being part of it, is
// left unmarked.
func findCycles(infos map[string]*rdf.BlankNodeInfo) map[string]bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(infos))
	cyclic := make(map[string]bool)
	var stack []string
	pos := make(map[string]int, len(infos))

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		pos[id] = len(stack)
		stack = append(stack, id)

		if info := infos[id]; info != nil {
			for _, t := range info.OutgoingTriples {
				next, ok := t.Obj.(rdf.BlankNode)
				if !ok {
					continue
				}
				switch color[next.ID] {
				case white:
					visit(next.ID)
				case gray:
					// Back edge: next and everything on the stack from
					// next's position to the top is the cycle itself.
					for _, onCycle := range stack[pos[next.ID]:] {
						cyclic[onCycle] = true
					}
				case black:
					// Cross/forward edge to an already-resolved node;
					// nothing to mark here.
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for id := range infos {
		if color[id] == white {
			visit(id)
		}
	}
	return cyclic
}
