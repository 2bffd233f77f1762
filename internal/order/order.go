// Package order implements the sorter: deterministic total orders over
// subject groups, predicates within a subject, and objects within a
// (subject, predicate) group.
package order

import (
	"math/big"
	"sort"
	"strings"

	"github.com/rdfprtr/prtr/internal/analyze"
	"github.com/rdfprtr/prtr/internal/collect"
	"github.com/rdfprtr/prtr/rdf"
)

// Term type ranks, ascending.
const (
	rankEmptyPrefix = iota
	rankPrefixed
	rankRelative
	rankAbsolute
	rankLiteral
	rankCollection
	rankAnonBlank
	rankLabelledBlank
)

// Config configures the sorter: the custom or preset predicate and
// subject-type orders, and whether prtr:sortingId is honored.
type Config struct {
	PredicateOrder   []rdf.NamedNode
	SubjectTypeOrder []rdf.NamedNode
	UsePrtrSorting   bool
}

// Sorter produces the three total orders the formatter requires, given a
// document, the reference analyzer's result, and the collection
// detector's result.
type Sorter struct {
	doc        *rdf.Document
	analysis   *analyze.Result
	collection *collect.Result
	cfg        Config

	predIndex    map[string]int // predicate IRI -> index in cfg.PredicateOrder
	subjTypeIdx  map[string]int // type IRI -> index in cfg.SubjectTypeOrder
	subjectEarly map[rdf.Term]int
}

// New builds a Sorter. It precomputes the predicate-order and
// subject-type-order lookup tables and, for every subject appearing in
// doc, its earliest matching subject-type index.
func New(doc *rdf.Document, analysis *analyze.Result, collection *collect.Result, cfg Config) *Sorter {
	s := &Sorter{doc: doc, analysis: analysis, collection: collection, cfg: cfg}

	s.predIndex = make(map[string]int, len(cfg.PredicateOrder))
	for i, p := range cfg.PredicateOrder {
		if _, exists := s.predIndex[p.IRI]; !exists {
			s.predIndex[p.IRI] = i
		}
	}

	s.subjTypeIdx = make(map[string]int, len(cfg.SubjectTypeOrder))
	for i, t := range cfg.SubjectTypeOrder {
		if _, exists := s.subjTypeIdx[t.IRI]; !exists {
			s.subjTypeIdx[t.IRI] = i
		}
	}

	s.subjectEarly = make(map[rdf.Term]int)
	for _, t := range doc.Triples() {
		if !t.IsRDFType() {
			continue
		}
		typeNode, ok := t.Obj.(rdf.NamedNode)
		if !ok {
			continue
		}
		idx, ok := s.subjTypeIdx[typeNode.IRI]
		if !ok {
			continue
		}
		if cur, exists := s.subjectEarly[t.Subj]; !exists || idx < cur {
			s.subjectEarly[t.Subj] = idx
		}
	}

	return s
}

// SortSubjects returns subjects ordered by subject-type order first, then
// term-type rank.
func (s *Sorter) SortSubjects(subjects []rdf.Term) []rdf.Term {
	out := append([]rdf.Term(nil), subjects...)
	sort.SliceStable(out, func(i, j int) bool {
		return s.lessSubject(out[i], out[j])
	})
	return out
}

func (s *Sorter) lessSubject(a, b rdf.Term) bool {
	ai, aok := s.subjectEarly[a]
	bi, bok := s.subjectEarly[b]
	switch {
	case aok && bok && ai != bi:
		return ai < bi
	case aok && !bok:
		return true
	case !aok && bok:
		return false
	}
	return s.lessTerm(a, b)
}

// SortPredicates returns preds (the predicates of one subject group)
// ordered with rdf:type first (unless explicitly placed elsewhere in
// PredicateOrder), then PredicateOrder, then term-type rank.
func (s *Sorter) SortPredicates(preds []rdf.Term) []rdf.Term {
	out := append([]rdf.Term(nil), preds...)
	sort.SliceStable(out, func(i, j int) bool {
		return s.lessPredicate(out[i], out[j])
	})
	return out
}

func (s *Sorter) lessPredicate(a, b rdf.Term) bool {
	an, aok := a.(rdf.NamedNode)
	bn, bok := b.(rdf.NamedNode)

	_, aExplicit := s.predIndex[an.IRI]
	_, bExplicit := s.predIndex[bn.IRI]

	aIsType := aok && an.IRI == rdf.RDFType.IRI && !aExplicit
	bIsType := bok && bn.IRI == rdf.RDFType.IRI && !bExplicit
	if aIsType != bIsType {
		return aIsType
	}

	ai, aHas := s.predIndex[an.IRI]
	bi, bHas := s.predIndex[bn.IRI]
	switch {
	case aHas && bHas:
		return ai < bi
	case aHas && !bHas:
		return true
	case !aHas && bHas:
		return false
	}
	return s.lessTerm(a, b)
}

// SortObjects returns objs (the objects of one (subject, predicate) group)
// ordered by the full term-type rank, including literal sub-ranking.
func (s *Sorter) SortObjects(objs []rdf.Term) []rdf.Term {
	out := make([]rdf.Term, len(objs))
	for i, o := range objs {
		out[i] = s.collection.Resolve(o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return s.lessTerm(out[i], out[j])
	})
	return out
}

// lessTerm is the base term-type-rank comparator shared by all three
// orderings.
func (s *Sorter) lessTerm(a, b rdf.Term) bool {
	ar, akey := s.rank(a)
	br, bkey := s.rank(b)
	if ar != br {
		return ar < br
	}
	switch ar {
	case rankEmptyPrefix, rankPrefixed, rankRelative, rankAbsolute:
		return akey < bkey
	case rankLiteral:
		return s.lessLiteral(a.(rdf.Literal), b.(rdf.Literal))
	case rankCollection:
		return akey < bkey
	case rankAnonBlank:
		return akey < bkey
	case rankLabelledBlank:
		return s.lessLabelledBlank(a.(rdf.BlankNode), b.(rdf.BlankNode))
	}
	return false
}

// rank classifies t, returning its term-type rank and a sortable key used
// for within-rank comparison (the rendered form for named nodes, the
// structural key for anonymous blank nodes; literals and labelled blank
// nodes have dedicated comparators and ignore the key).
func (s *Sorter) rank(t rdf.Term) (int, string) {
	switch v := t.(type) {
	case rdf.NamedNode:
		return s.rankNamedNode(v)
	case rdf.Literal:
		return rankLiteral, ""
	case rdf.Collection:
		return rankCollection, collectionKey(v)
	case rdf.BlankNode:
		info := s.analysis.Info(v.ID)
		if info != nil && info.Role == rdf.Labelled {
			return rankLabelledBlank, ""
		}
		return rankAnonBlank, s.structuralKey(v, make(map[string]bool))
	default:
		return rankAbsolute, t.String()
	}
}

func collectionKey(c rdf.Collection) string {
	var b strings.Builder
	for _, e := range c.Elements {
		b.WriteString(e.String())
		b.WriteByte(0)
	}
	return b.String()
}

// rankNamedNode classifies a named node among the first four term-type
// ranks and produces its rendered form (prefixed name or <IRI>) as the
// within-rank sort key.
func (s *Sorter) rankNamedNode(n rdf.NamedNode) (int, string) {
	if sym, local, ok := s.bestPrefix(n.IRI); ok {
		if sym == "" {
			return rankEmptyPrefix, ":" + local
		}
		return rankPrefixed, sym + ":" + local
	}
	if base := s.doc.Base(); base != nil && strings.HasPrefix(n.IRI, base.IRI) {
		return rankRelative, "<" + strings.TrimPrefix(n.IRI, base.IRI) + ">"
	}
	return rankAbsolute, "<" + n.IRI + ">"
}

// bestPrefix returns the longest namespace binding that iri starts with,
// and the local name remaining after it.
func (s *Sorter) bestPrefix(iri string) (sym, local string, ok bool) {
	bestLen := -1
	for sym2, ns := range s.doc.Prefixes() {
		if strings.HasPrefix(iri, ns) && len(ns) > bestLen {
			bestLen = len(ns)
			sym, local, ok = sym2, iri[len(ns):], true
		}
	}
	return sym, local, ok
}

// lessLabelledBlank orders labelled blank nodes by prtr:sortingId
// ascending (numeric) when present on both sides — nodes with an ID sort
// before those without — with ties (or --no-prtr-sorting) broken by blank
// node identifier.
func (s *Sorter) lessLabelledBlank(a, b rdf.BlankNode) bool {
	if s.cfg.UsePrtrSorting {
		ai := s.analysis.Info(a.ID)
		bi := s.analysis.Info(b.ID)
		aHas := ai != nil && ai.SortingID != nil
		bHas := bi != nil && bi.SortingID != nil
		switch {
		case aHas && bHas:
			av, aerr := new(big.Float).SetString(ai.SortingID.Lexical)
			bv, berr := new(big.Float).SetString(bi.SortingID.Lexical)
			if aerr && berr {
				if cmp := av.Cmp(bv); cmp != 0 {
					return cmp < 0
				}
				break
			}
		case aHas && !bHas:
			return true
		case !aHas && bHas:
			return false
		}
	}
	return a.ID < b.ID
}

// structuralKey computes a stable comparison key for an anonymous blank
// node from a predicate-then-object recursion over its outgoing triples,
// with a cycle guard returning a sentinel on revisit.
func (s *Sorter) structuralKey(b rdf.BlankNode, visiting map[string]bool) string {
	if visiting[b.ID] {
		return "\x00cycle"
	}
	visiting[b.ID] = true
	defer delete(visiting, b.ID)

	info := s.analysis.Info(b.ID)
	if info == nil {
		return ""
	}
	triples := append([]rdf.Triple(nil), info.OutgoingTriples...)
	sort.Slice(triples, func(i, j int) bool {
		pi, pj := triples[i].Pred.String(), triples[j].Pred.String()
		if pi != pj {
			return pi < pj
		}
		return s.objectKey(triples[i].Obj, visiting) < s.objectKey(triples[j].Obj, visiting)
	})

	var buf strings.Builder
	for _, t := range triples {
		buf.WriteString(t.Pred.String())
		buf.WriteByte(0)
		buf.WriteString(s.objectKey(t.Obj, visiting))
		buf.WriteByte(0)
	}
	return buf.String()
}

func (s *Sorter) objectKey(t rdf.Term, visiting map[string]bool) string {
	resolved := s.collection.Resolve(t)
	if b, ok := resolved.(rdf.BlankNode); ok {
		return "_b:" + s.structuralKey(b, visiting)
	}
	return resolved.String()
}

// lessLiteral orders object-position literals by sub-ranking: plain
// string, then language-tagged, then datatype-annotated, then
// Turtle-native (boolean < integer < decimal < double), each group
// ordered within itself.
func (s *Sorter) lessLiteral(a, b rdf.Literal) bool {
	ag, bg := literalGroup(a), literalGroup(b)
	if ag != bg {
		return ag < bg
	}
	switch ag {
	case litGroupPlain:
		return a.Lexical < b.Lexical
	case litGroupLang:
		if a.Lang != b.Lang {
			return a.Lang < b.Lang
		}
		return a.Lexical < b.Lexical
	case litGroupDatatype:
		if a.DataType.IRI != b.DataType.IRI {
			return a.DataType.IRI < b.DataType.IRI
		}
		return a.Lexical < b.Lexical
	default: // litGroupNative
		ar, br := nativeRank(a.DataType), nativeRank(b.DataType)
		if ar != br {
			return ar < br
		}
		av, aok := new(big.Float).SetString(a.Lexical)
		bv, bok := new(big.Float).SetString(b.Lexical)
		if aok && bok {
			if cmp := av.Cmp(bv); cmp != 0 {
				return cmp < 0
			}
		}
		return a.Lexical < b.Lexical
	}
}

type literalGroupKind int

const (
	litGroupPlain literalGroupKind = iota
	litGroupLang
	litGroupDatatype
	litGroupNative
)

func literalGroup(l rdf.Literal) literalGroupKind {
	switch {
	case l.IsPlain():
		return litGroupPlain
	case l.Lang != "":
		return litGroupLang
	case isNativeDatatype(l.DataType):
		return litGroupNative
	default:
		return litGroupDatatype
	}
}

func isNativeDatatype(dt rdf.NamedNode) bool {
	switch dt.IRI {
	case rdf.XSDBoolean.IRI, rdf.XSDInteger.IRI, rdf.XSDDecimal.IRI, rdf.XSDDouble.IRI:
		return true
	default:
		return false
	}
}

func nativeRank(dt rdf.NamedNode) int {
	switch dt.IRI {
	case rdf.XSDBoolean.IRI:
		return 0
	case rdf.XSDInteger.IRI:
		return 1
	case rdf.XSDDecimal.IRI:
		return 2
	case rdf.XSDDouble.IRI:
		return 3
	default:
		return 4
	}
}
