package rdf

import "fmt"

// DocumentError aggregates the fatal, ingest-time consistency violations
// that must be detected before a Document is frozen: duplicate prefix
// bindings, prefix/base namespace collisions, and namespace reuse across
// distinct prefixes.
type DocumentError struct {
	Violations []Violation
}

func (e *DocumentError) Error() string {
	if len(e.Violations) == 1 {
		return e.Violations[0].Error()
	}
	return fmt.Sprintf("%d document consistency violations, first: %s", len(e.Violations), e.Violations[0].Error())
}

// Violation is a single document-consistency error.
type Violation struct {
	Kind ViolationKind

	// Symbol is the prefix symbol involved, when applicable.
	Symbol string

	// Namespace is the namespace IRI involved, when applicable.
	Namespace string
}

// ViolationKind enumerates the document-consistency error kinds.
type ViolationKind int

const (
	// DuplicatePrefix is reported when a prefix symbol is bound to two
	// different namespace IRIs in the same document. Declaring a symbol
	// again with the same namespace IRI is not reported.
	DuplicatePrefix ViolationKind = iota

	// DuplicateNamespace is reported when two distinct prefix symbols
	// bind the same namespace IRI.
	DuplicateNamespace

	// BaseNamespaceCollision is reported when a prefix shares its
	// namespace IRI with the document base.
	BaseNamespaceCollision
)

func (v Violation) Error() string {
	switch v.Kind {
	case DuplicatePrefix:
		return fmt.Sprintf("prefix %q is rebound to a different namespace; split the file or use distinct prefixes", v.Symbol)
	case DuplicateNamespace:
		return fmt.Sprintf("namespace %q is bound by more than one prefix symbol; use a single prefix or inline relative IRIs", v.Namespace)
	case BaseNamespaceCollision:
		return fmt.Sprintf("prefix %q shares its namespace with the document base; use distinct prefixes or inline relative IRIs", v.Symbol)
	default:
		return "document consistency violation"
	}
}
