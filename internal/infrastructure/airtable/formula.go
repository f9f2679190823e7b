package airtable

import (
	"fmt"
	"strings"
)

// Formula helpers for filterByFormula expressions. User-supplied values must
// go through EscapeString before interpolation; business names can contain
// quotes and backslashes that would otherwise change the formula's meaning.

// EscapeString escapes a string literal for use inside a double-quoted
// Airtable formula string.
func EscapeString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// Equals builds a {Field} = "value" term with the value escaped.
func Equals(field, value string) string {
	return fmt.Sprintf(`{%s} = "%s"`, field, EscapeString(value))
}

// HasPrefix builds a term matching records whose field starts with prefix.
func HasPrefix(field, prefix string) string {
	return fmt.Sprintf(`FIND("%s", {%s}) = 1`, EscapeString(prefix), field)
}

// Contains builds a term matching records whose field contains value
// anywhere; for multi-select fields Airtable flattens the values into a
// comma-joined string, so this doubles as set membership.
func Contains(field, value string) string {
	return fmt.Sprintf(`FIND("%s", {%s}) > 0`, EscapeString(value), field)
}

// IsTrue builds a term matching records whose checkbox field is checked.
func IsTrue(field string) string {
	return fmt.Sprintf(`{%s} = TRUE()`, field)
}

// And combines terms conjunctively. Zero terms yield an empty formula and
// one term is returned bare.
func And(terms ...string) string {
	return combine("AND", terms)
}

// Or combines terms disjunctively.
func Or(terms ...string) string {
	return combine("OR", terms)
}

func combine(op string, terms []string) string {
	filtered := terms[:0:0]
	for _, t := range terms {
		if t != "" {
			filtered = append(filtered, t)
		}
	}
	switch len(filtered) {
	case 0:
		return ""
	case 1:
		return filtered[0]
	default:
		return fmt.Sprintf("%s(%s)", op, strings.Join(filtered, ", "))
	}
}
