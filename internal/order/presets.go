package order

import "github.com/rdfprtr/prtr/rdf"

const (
	rdfsNS  = "http://www.w3.org/2000/01/rdf-schema#"
	owlNS   = "http://www.w3.org/2002/07/owl#"
	skosNS  = "http://www.w3.org/2004/02/skos/core#"
	shaclNS = "http://www.w3.org/ns/shacl#"
	shexNS  = "http://www.w3.org/ns/shex#"
)

func nn(iri string) rdf.NamedNode { return rdf.NamedNode{IRI: iri} }

// Preset names accepted by --pred-order-preset and --subj-type-order-preset.
// The exact list contents are shipped configuration, documented in
// SPEC_FULL.md §4.3.
var presets = map[string]struct {
	predicateOrder   []rdf.NamedNode
	subjectTypeOrder []rdf.NamedNode
}{
	"rdf": {
		predicateOrder: []rdf.NamedNode{rdf.RDFType},
	},
	"owl": {
		predicateOrder: []rdf.NamedNode{
			rdf.RDFType,
			nn(owlNS + "imports"),
			nn(owlNS + "versionIRI"),
			nn(rdfsNS + "label"),
			nn(rdfsNS + "comment"),
			nn(owlNS + "equivalentClass"),
			nn(owlNS + "equivalentProperty"),
			nn(rdfsNS + "subClassOf"),
			nn(rdfsNS + "subPropertyOf"),
			nn(rdfsNS + "domain"),
			nn(rdfsNS + "range"),
			nn(owlNS + "disjointWith"),
			nn(owlNS + "inverseOf"),
		},
		subjectTypeOrder: []rdf.NamedNode{
			nn(owlNS + "Ontology"),
			nn(owlNS + "Class"),
			nn(owlNS + "ObjectProperty"),
			nn(owlNS + "DatatypeProperty"),
			nn(owlNS + "AnnotationProperty"),
			nn(owlNS + "NamedIndividual"),
		},
	},
	"skos": {
		predicateOrder: []rdf.NamedNode{
			rdf.RDFType,
			nn(skosNS + "prefLabel"),
			nn(skosNS + "altLabel"),
			nn(skosNS + "definition"),
			nn(skosNS + "broader"),
			nn(skosNS + "narrower"),
			nn(skosNS + "related"),
			nn(skosNS + "inScheme"),
			nn(skosNS + "topConceptOf"),
		},
		subjectTypeOrder: []rdf.NamedNode{
			nn(skosNS + "ConceptScheme"),
			nn(skosNS + "Collection"),
			nn(skosNS + "Concept"),
		},
	},
	"shacl": {
		predicateOrder: []rdf.NamedNode{
			rdf.RDFType,
			nn(shaclNS + "targetClass"),
			nn(shaclNS + "targetNode"),
			nn(shaclNS + "property"),
			nn(shaclNS + "path"),
			nn(shaclNS + "class"),
			nn(shaclNS + "datatype"),
			nn(shaclNS + "minCount"),
			nn(shaclNS + "maxCount"),
			nn(shaclNS + "node"),
			nn(shaclNS + "message"),
			nn(shaclNS + "severity"),
		},
		subjectTypeOrder: []rdf.NamedNode{
			nn(shaclNS + "NodeShape"),
			nn(shaclNS + "PropertyShape"),
		},
	},
	"shex": {
		predicateOrder: []rdf.NamedNode{
			rdf.RDFType,
			nn(shexNS + "shapes"),
			nn(shexNS + "start"),
			nn(shexNS + "expression"),
			nn(shexNS + "predicate"),
			nn(shexNS + "valueExpr"),
			nn(shexNS + "min"),
			nn(shexNS + "max"),
		},
		subjectTypeOrder: []rdf.NamedNode{
			nn(shexNS + "Schema"),
			nn(shexNS + "Shape"),
			nn(shexNS + "EachOf"),
			nn(shexNS + "TripleConstraint"),
		},
	},
}

// Preset looks up a named predicate/subject-type order preset. ok is false
// for an unrecognized name, which the CLI reports as a fatal configuration
// error.
func Preset(name string) (predicateOrder, subjectTypeOrder []rdf.NamedNode, ok bool) {
	p, ok := presets[name]
	if !ok {
		return nil, nil, false
	}
	return p.predicateOrder, p.subjectTypeOrder, true
}
