// File: internal/diagnosis/table.go
package diagnosis

import "regexp"

// DefaultCategory is assigned to incidents no signature claims.
const DefaultCategory = "Uncommon Error"

const defaultAdvice = "No known failure signature matched this output. Search the " +
	"first error line verbatim; kernel build failures are rarely novel."

// Classification is the category and remediation advice attached to
// exactly one incident.
type Classification struct {
	Category string `json:"category"`
	Advice   string `json:"advice"`
}

// Signature is one known failure shape. Patterns are compiled once and
// matched case-insensitively against an incident's whole joined text.
type Signature struct {
	Pattern  *regexp.Regexp
	Category string
	Advice   string
}

// Table is an immutable ordered signature list. Declaration order is the
// match priority and is never re-sorted at runtime.
type Table struct {
	sigs []Signature
}

// NewTable builds a table from signatures in priority order.
func NewTable(sigs ...Signature) Table {
	return Table{sigs: append([]Signature(nil), sigs...)}
}

// Len returns the number of signatures in the table.
func (t Table) Len() int {
	return len(t.sigs)
}

// Classify returns the classification of the first signature whose
// pattern matches anywhere in text; later signatures are not consulted.
// Every text classifies: a miss falls back to DefaultCategory.
func (t Table) Classify(text string) Classification {
	for _, sig := range t.sigs {
		if sig.Pattern.MatchString(text) {
			return Classification{Category: sig.Category, Advice: sig.Advice}
		}
	}
	return Classification{Category: DefaultCategory, Advice: defaultAdvice}
}
