package asciidoc

import (
	"regexp"
	"strings"
)

// attrEntryRe matches an AttributeEntry line: `:name: value` defines,
// `:name!:` undefines (§3 "Attribute entry", §4.6.1).
var attrEntryRe = regexp.MustCompile(`^:(?P<name>[^\s:!]+)(?P<bang>!?):(?:\s+(?P<value>.*))?\s*$`)

// AttrEntry is a recognized attribute-entry line.
type AttrEntry struct {
	Name    string
	Value   string
	Defined bool
}

// MatchAttrEntry recognizes line as an AttributeEntry, returning ok=false
// if it doesn't match the grammar.
func MatchAttrEntry(line string) (AttrEntry, bool) {
	m := attrEntryRe.FindStringSubmatch(line)
	if m == nil {
		return AttrEntry{}, false
	}
	names := attrEntryRe.SubexpNames()
	var name, bang, value string
	for i, g := range m {
		switch names[i] {
		case "name":
			name = g
		case "bang":
			bang = g
		case "value":
			value = g
		}
	}
	if !IsValidAttrName(name) {
		return AttrEntry{}, false
	}
	return AttrEntry{Name: name, Value: value, Defined: bang == ""}, true
}

// Apply continuation lines: a value ending in a single unescaped `+`
// continues onto the following line, joined with a space (§4.6.1).
func (a *AttrEntry) appendContinuation(next string) {
	a.Value = strings.TrimSuffix(a.Value, "+") + " " + strings.TrimSpace(next)
}

// attrEntryContinues reports whether value ends with a line-continuation
// marker: a lone `+` preceded by whitespace or start of line.
func attrEntryContinues(value string) bool {
	v := strings.TrimRight(value, " \t")
	return strings.HasSuffix(v, "+") && !strings.HasSuffix(v, `\+`)
}

// ApplyAttrEntry updates attrs per a recognized entry (§4.6.1: undefine
// clears, define sets, empty value defines as present-but-empty).
func ApplyAttrEntry(attrs *AttrMap, e AttrEntry) {
	if !e.Defined {
		attrs.Unset(e.Name)
		return
	}
	attrs.Set(e.Name, e.Value)
}
