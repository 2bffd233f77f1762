// Package litfmt implements the literal normalizer: it chooses between a
// Turtle short form (true, 42, 3.14) and a quoted
// literal, and minimizes and canonicalizes escapes, with an exact
// round-trip requirement.
package litfmt

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/rdfprtr/prtr/rdf"
)

// Render returns the Turtle surface form of l: a bare short form when one
// round-trips exactly to l's lexical value and datatype, a "..."^^dt or
// "..."@lang quoted literal otherwise. typeName renders a NamedNode as it
// would appear elsewhere in the document (prefixed or bracketed), used
// only for the ^^ suffix.
func Render(l rdf.Literal, typeName func(rdf.NamedNode) string) string {
	if short, ok := ShortForm(l); ok {
		return short
	}
	quoted := Quote(l.Lexical)
	switch {
	case l.Lang != "":
		return quoted + "@" + l.Lang
	case l.DataType.IRI != "" && l.DataType.IRI != rdf.XSDString.IRI:
		return quoted + "^^" + typeName(l.DataType)
	default:
		return quoted
	}
}

// ShortForm returns the bare Turtle literal form (true, 42, 3.14, 3.14e0)
// for l, and ok=false if l has no exact short form: either its datatype
// isn't one of xsd:boolean/integer/decimal/double, or its lexical form is
// not one the short-form checks below accept (e.g. a leading zero or an
// explicit '+' sign on an integer or decimal, or a double whose value
// does not survive conversion to float64).
func ShortForm(l rdf.Literal) (string, bool) {
	if l.Lang != "" {
		return "", false
	}
	switch l.DataType.IRI {
	case rdf.XSDBoolean.IRI:
		return shortBoolean(l.Lexical)
	case rdf.XSDInteger.IRI:
		return shortInteger(l.Lexical)
	case rdf.XSDDecimal.IRI:
		return shortDecimal(l.Lexical)
	case rdf.XSDDouble.IRI:
		return shortDouble(l.Lexical)
	default:
		return "", false
	}
}

func shortBoolean(lex string) (string, bool) {
	switch lex {
	case "true", "false":
		return lex, true
	default:
		return "", false
	}
}

// shortInteger accepts the canonical Turtle INTEGER grammar: an optional
// '-' sign followed by one or more digits, with no leading zero unless the
// value itself is zero. An explicit '+' sign is rejected.
func shortInteger(lex string) (string, bool) {
	s := lex
	sign := ""
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		sign, s = s[:1], s[1:]
	}
	if s == "" || !isDigits(s) {
		return "", false
	}
	if len(s) > 1 && s[0] == '0' {
		return "", false
	}
	if sign == "+" {
		return "", false
	}
	return sign + s, true
}

// shortDecimal accepts sign, digits, ".", digits (both digit runs
// required, no exponent), with the same no-leading-zero and no-plus-sign
// canonical policy as integers, and no superfluous trailing zero beyond
// the one needed when the fractional part is all zero.
func shortDecimal(lex string) (string, bool) {
	s := lex
	sign := ""
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		sign, s = s[:1], s[1:]
	}
	if sign == "+" {
		return "", false
	}
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return "", false
	}
	intPart, fracPart := s[:dot], s[dot+1:]
	if intPart == "" || fracPart == "" || !isDigits(intPart) || !isDigits(fracPart) {
		return "", false
	}
	if len(intPart) > 1 && intPart[0] == '0' {
		return "", false
	}
	if len(fracPart) > 1 && fracPart[len(fracPart)-1] == '0' {
		return "", false
	}
	return sign + intPart + "." + fracPart, true
}

// shortDouble keeps the lexical form exactly as written; no canonical
// spelling is produced or required, so the exponent may use 'e' or 'E'
// with any sign or digits. Since Turtle doubles always carry an exponent
// marker, any lexical form without one fails, and any form whose value
// parsed by strconv as a float64 differs from its value parsed by
// math/big at 64-bit precision is rejected rather than silently
// normalized.
func shortDouble(lex string) (string, bool) {
	if !strings.ContainsAny(lex, "eE") {
		return "", false
	}
	f, err := strconv.ParseFloat(lex, 64)
	if err != nil {
		return "", false
	}
	v, _, err := big.ParseFloat(lex, 10, 0, big.ToNearestEven)
	if err != nil {
		return "", false
	}
	back := big.NewFloat(f)
	if v.Cmp(back) != 0 {
		return "", false
	}
	return lex, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Quote renders s as a double-quoted Turtle string literal: a
// triple-quoted """...""" form if s contains a newline, a single-quoted
// "..." form otherwise, with the minimal escape set required by the
// chosen quoting (escaping only the delimiter sequence, backslash, and
// control characters) and canonical shortest \uXXXX / \UXXXXXXXX forms
// for any character that must be escaped numerically.
func Quote(s string) string {
	if strings.ContainsRune(s, '\n') {
		return `"""` + escapeTriple(s) + `"""`
	}
	return `"` + escapeSingle(s) + `"`
}

func escapeSingle(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			writeRune(&b, r)
		}
	}
	return b.String()
}

// escapeTriple escapes only backslash, carriage return, and a run of
// three-or-more consecutive quotes (to keep the closing """ unambiguous);
// a lone or doubled quote needs no escape inside a triple-quoted string.
// Literal newlines are the reason """ was chosen over "..." in the first
// place, so they (and tabs) pass through unescaped.
func escapeTriple(s string) string {
	var b strings.Builder
	runs := 0
	for _, r := range s {
		if r == '"' {
			runs++
			if runs >= 3 {
				b.WriteString(`\"`)
				continue
			}
			b.WriteRune(r)
			continue
		}
		runs = 0
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\r':
			b.WriteString(`\r`)
		case '\n', '\t':
			b.WriteRune(r)
		default:
			writeRune(&b, r)
		}
	}
	return b.String()
}

// writeRune appends r verbatim unless it is a control character outside
// the escapes already handled by the caller, in which case it is emitted
// as the shortest canonical \uXXXX (or \UXXXXXXXX for non-BMP) form.
func writeRune(b *strings.Builder, r rune) {
	if r == '\t' || r >= 0x20 && r != 0x7f {
		b.WriteRune(r)
		return
	}
	if r > 0xFFFF {
		fmt.Fprintf(b, `\U%08X`, r)
		return
	}
	fmt.Fprintf(b, `\u%04X`, r)
}

// QuoteIRI canonicalizes the same escape rules Quote uses, applied to an
// IRIREF's contents: a backslash-uXXXX/UXXXXXXXX escape is rewritten to
// its canonical shortest form rather than reproduced byte-for-byte.
func QuoteIRI(iri string) string {
	var b strings.Builder
	for _, r := range iri {
		if r < 0x20 || r == '<' || r == '>' || r == '"' || r == '{' || r == '}' || r == '|' || r == '^' || r == '`' || r == '\\' {
			writeRune(&b, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
