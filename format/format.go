// Package format wires the formatting pipeline together: the reference
// analyzer, collection detector, sorter, literal normalizer and emitter
// run in sequence over a frozen rdf.Document to produce its canonical
// pretty-printed Turtle text, and package format.Check compares that text
// against a file's existing contents for the --check CLI mode.
package format

import (
	"bytes"
	"fmt"

	"github.com/pkg/diff"

	"github.com/rdfprtr/prtr/internal/analyze"
	"github.com/rdfprtr/prtr/internal/collect"
	"github.com/rdfprtr/prtr/internal/emit"
	"github.com/rdfprtr/prtr/internal/order"
	"github.com/rdfprtr/prtr/rdf"
)

// Config holds every formatting choice the CLI's flags expose.
type Config struct {
	// Indent is the whitespace unit used per nesting level. Defaults to
	// two spaces if empty.
	Indent string

	// LabelAllBlankNodes forces every blank node to a top-level labelled
	// subject group (-l/--label-all-blank-nodes).
	LabelAllBlankNodes bool

	// NoPrtrSorting disables prtr:sortingId-based ordering of labelled
	// blank node siblings, falling back to blank node identifier order
	// (--no-prtr-sorting).
	NoPrtrSorting bool

	// NoSPARQLSyntax selects @prefix/@base over PREFIX/BASE in the
	// prologue (--no-sparql-syntax).
	NoSPARQLSyntax bool

	// SingleLeafedNewlines selects the maximal newline policy
	// (-n/--single-leafed-new-lines): every predicate, object, and
	// nested "[" is written on its own line, unconditionally. When
	// false, a predicate with a single non-multi-line object is
	// inlined on the predicate's line, and a subject with a single
	// predicate-object pair collapses entirely onto the subject's
	// line.
	SingleLeafedNewlines bool

	// PredicateOrder and SubjectTypeOrder are the explicit orderings the
	// sorter consults before falling back to term-type rank. When both
	// are nil, Preset supplies them.
	PredicateOrder   []rdf.NamedNode
	SubjectTypeOrder []rdf.NamedNode

	// Preset names a built-in predicate/subject-type order table (one of
	// "rdf", "owl", "skos", "shacl", "shex") used when PredicateOrder and
	// SubjectTypeOrder are both nil.
	Preset string
}

func (c Config) resolve() (Config, error) {
	if c.Indent == "" {
		c.Indent = "  "
	}
	if c.PredicateOrder == nil && c.SubjectTypeOrder == nil && c.Preset != "" {
		predOrder, subjOrder, ok := order.Preset(c.Preset)
		if !ok {
			return c, fmt.Errorf("format: unknown preset %q", c.Preset)
		}
		c.PredicateOrder, c.SubjectTypeOrder = predOrder, subjOrder
	}
	return c, nil
}

// Format runs the full pipeline over doc and returns its canonical
// Turtle text.
func Format(doc *rdf.Document, cfg Config) (string, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return "", err
	}

	analysis := analyze.Analyze(doc, cfg.LabelAllBlankNodes)
	coll := collect.Detect(doc, analysis)
	sorter := order.New(doc, analysis, coll, order.Config{
		PredicateOrder:   cfg.PredicateOrder,
		SubjectTypeOrder: cfg.SubjectTypeOrder,
		UsePrtrSorting:   !cfg.NoPrtrSorting,
	})
	emitter := emit.New(doc, analysis, coll, sorter, emit.Config{
		Indent:               cfg.Indent,
		NoSPARQLSyntax:       cfg.NoSPARQLSyntax,
		SingleLeafedNewlines: cfg.SingleLeafedNewlines,
	})

	subjects := topLevelSubjects(doc, analysis, coll)
	subjects = sorter.SortSubjects(subjects)

	return emitter.Emit(subjects), nil
}

// topLevelSubjects returns every distinct subject that must render as its
// own top-level "subject predicateObjectList ." block: every named-node
// subject, plus every blank node the analyzer assigned role
// rdf.Labelled, excluding any blank node the collection detector has
// folded into a Collection.
func topLevelSubjects(doc *rdf.Document, analysis *analyze.Result, coll *collect.Result) []rdf.Term {
	seen := make(map[string]bool)
	var subjects []rdf.Term
	for _, t := range doc.Triples() {
		switch s := t.Subj.(type) {
		case rdf.NamedNode:
			if !seen["n:"+s.IRI] {
				seen["n:"+s.IRI] = true
				subjects = append(subjects, s)
			}
		case rdf.BlankNode:
			if coll.IsConsumed(s.ID) {
				continue
			}
			info := analysis.Info(s.ID)
			if info == nil || info.Role != rdf.Labelled {
				continue
			}
			if !seen["b:"+s.ID] {
				seen["b:"+s.ID] = true
				subjects = append(subjects, s)
			}
		}
	}
	return subjects
}

// Check formats doc and compares the result against original byte for
// byte. ok reports whether they match; when they don't, diffText holds a
// unified diff of original against the formatted text.
func Check(doc *rdf.Document, cfg Config, original []byte) (diffText string, ok bool, err error) {
	formatted, err := Format(doc, cfg)
	if err != nil {
		return "", false, err
	}
	if string(original) == formatted {
		return "", true, nil
	}

	var buf bytes.Buffer
	err = diff.Text("original", "formatted", string(original), formatted, &buf)
	if err != nil {
		return "", false, fmt.Errorf("format: computing diff: %w", err)
	}
	return buf.String(), false, nil
}
