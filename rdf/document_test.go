package rdf

import "testing"

func TestFreezeDuplicateNamespace(t *testing.T) {
	prefixes := map[string]string{
		"ex1": "http://example.com/",
		"ex2": "http://example.com/",
	}
	_, err := Freeze(prefixes, nil, nil)
	if err == nil {
		t.Fatal("Freeze: want error for duplicate namespace, got nil")
	}
	de, ok := err.(*DocumentError)
	if !ok {
		t.Fatalf("Freeze: want *DocumentError, got %T", err)
	}
	if len(de.Violations) != 2 {
		t.Fatalf("Freeze: want 2 violations, got %d", len(de.Violations))
	}
	for _, v := range de.Violations {
		if v.Kind != DuplicateNamespace {
			t.Errorf("Freeze: want DuplicateNamespace violation, got %v", v.Kind)
		}
	}
}

func TestFreezeBaseNamespaceCollision(t *testing.T) {
	prefixes := map[string]string{"ex": "http://example.com/"}
	base := &NamedNode{IRI: "http://example.com/"}
	_, err := Freeze(prefixes, base, nil)
	if err == nil {
		t.Fatal("Freeze: want error for base/namespace collision, got nil")
	}
	de := err.(*DocumentError)
	if de.Violations[0].Kind != BaseNamespaceCollision {
		t.Errorf("Freeze: want BaseNamespaceCollision, got %v", de.Violations[0].Kind)
	}
}

func TestFreezeOK(t *testing.T) {
	prefixes := map[string]string{"ex": "http://example.com/"}
	triples := []Triple{
		{Subj: NamedNode{IRI: "http://example.com/s"}, Pred: RDFType, Obj: NamedNode{IRI: "http://example.com/Foo"}},
	}
	doc, err := Freeze(prefixes, nil, triples)
	if err != nil {
		t.Fatalf("Freeze: unexpected error: %v", err)
	}
	if len(doc.Triples()) != 1 {
		t.Errorf("Freeze: want 1 triple, got %d", len(doc.Triples()))
	}
	if got := doc.PrefixSymbols(); len(got) != 1 || got[0] != "ex" {
		t.Errorf("PrefixSymbols() = %v; want [ex]", got)
	}
}

func TestFreezeCopiesInput(t *testing.T) {
	prefixes := map[string]string{"ex": "http://example.com/"}
	triples := []Triple{{Subj: NamedNode{IRI: "http://example.com/s"}, Pred: RDFType, Obj: NamedNode{IRI: "http://example.com/Foo"}}}
	doc, err := Freeze(prefixes, nil, triples)
	if err != nil {
		t.Fatal(err)
	}
	prefixes["ex"] = "http://mutated.example/"
	triples[0] = Triple{}
	if doc.Prefixes()["ex"] != "http://example.com/" {
		t.Error("Freeze: document prefixes alias caller's map")
	}
	if doc.Triples()[0].Pred == nil {
		t.Error("Freeze: document triples alias caller's slice")
	}
}
