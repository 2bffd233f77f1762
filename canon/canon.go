// Package canon implements the optional --canonicalize step: it relabels
// a document's blank nodes to the RDF Dataset
// Canonicalization identifiers their isomorphism class determines,
// independent of the labels the source file happened to use, so two
// isomorphic documents format to byte-identical output.
//
// The canonical-labelling algorithm itself (RDFC-1.0 / the hash-based
// blank node labelling scheme) is not reimplemented here; it is delegated
// entirely to gonum.org/v1/gonum/graph/formats/rdf, which implements it
// against the same N-Quads-flavoured Term/Statement model this package
// adapts a frozen rdf.Document to and from.
package canon

import (
	"crypto/sha256"
	"fmt"

	grdf "gonum.org/v1/gonum/graph/formats/rdf"

	"github.com/rdfprtr/prtr/rdf"
)

// Canonicalize returns a new Document with every blank node relabelled to
// its canonical _:c14n<N> identifier, and the document's triples sorted
// into canonical statement order. Prefixes and base are carried over
// unchanged.
func Canonicalize(doc *rdf.Document) (*rdf.Document, error) {
	triples := doc.Triples()
	if len(triples) == 0 {
		return doc, nil
	}

	statements := make([]*grdf.Statement, len(triples))
	for i, t := range triples {
		subj, err := toGonumTerm(t.Subj)
		if err != nil {
			return nil, fmt.Errorf("canon: triple %d subject: %w", i, err)
		}
		pred, err := toGonumTerm(t.Pred)
		if err != nil {
			return nil, fmt.Errorf("canon: triple %d predicate: %w", i, err)
		}
		obj, err := toGonumTerm(t.Obj)
		if err != nil {
			return nil, fmt.Errorf("canon: triple %d object: %w", i, err)
		}
		statements[i] = &grdf.Statement{Subject: subj, Predicate: pred, Object: obj}
	}

	_, terms := grdf.IsoCanonicalHashes(statements, true, true, sha256.New(), nil)

	c14n, err := grdf.C14n(nil, statements, terms)
	if err != nil {
		return nil, fmt.Errorf("canon: %w", err)
	}

	out := make([]rdf.Triple, len(c14n))
	for i, s := range c14n {
		subj, err := fromGonumTerm(s.Subject)
		if err != nil {
			return nil, fmt.Errorf("canon: canonical statement %d subject: %w", i, err)
		}
		pred, err := fromGonumTerm(s.Predicate)
		if err != nil {
			return nil, fmt.Errorf("canon: canonical statement %d predicate: %w", i, err)
		}
		obj, err := fromGonumTerm(s.Object)
		if err != nil {
			return nil, fmt.Errorf("canon: canonical statement %d object: %w", i, err)
		}
		out[i] = rdf.Triple{Subj: subj, Pred: pred, Obj: obj}
	}

	return rdf.Freeze(doc.Prefixes(), doc.Base(), out)
}

// toGonumTerm renders a non-collection rdf.Term into gonum's N-Quads term
// syntax. Collections must already have been expanded back to their
// rdf:first/rdf:rest triples by the caller — canonicalization runs on the
// raw triple set, before the collection detector folds any chain.
func toGonumTerm(t rdf.Term) (grdf.Term, error) {
	switch v := t.(type) {
	case rdf.NamedNode:
		return grdf.NewIRITerm(v.IRI)
	case rdf.BlankNode:
		return grdf.NewBlankTerm(v.ID)
	case rdf.Literal:
		qual := ""
		switch {
		case v.Lang != "":
			qual = "@" + v.Lang
		case v.DataType.IRI != "" && v.DataType.IRI != rdf.XSDString.IRI:
			qual = v.DataType.IRI
		}
		return grdf.NewLiteralTerm(v.Lexical, qual)
	default:
		return grdf.Term{}, fmt.Errorf("canon: term %v has no N-Quads representation", t)
	}
}

// fromGonumTerm parses a gonum N-Quads term back into an rdf.Term.
func fromGonumTerm(term grdf.Term) (rdf.Term, error) {
	text, qual, kind, err := term.Parts()
	if err != nil {
		return nil, err
	}
	switch kind {
	case grdf.IRI:
		return rdf.NamedNode{IRI: text}, nil
	case grdf.Blank:
		return rdf.BlankNode{ID: text}, nil
	case grdf.Literal:
		l := rdf.Literal{Lexical: text, DataType: rdf.XSDString}
		switch {
		case qual == "":
		case qual[0] == '@':
			l.Lang = qual[1:]
			l.DataType = rdf.NamedNode{}
		default:
			l.DataType = rdf.NamedNode{IRI: qual}
		}
		return l, nil
	default:
		return nil, fmt.Errorf("canon: unrecognized term kind %v for %q", kind, term.Value)
	}
}
