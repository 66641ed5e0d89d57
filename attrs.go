package asciidoc

import (
	"regexp"
	"strconv"
	"strings"
)

// attrNameRe validates attribute and section names against the grammar of
// §3: lowercase identifier `[^\W\d][-\w]*`.
var attrNameRe = regexp.MustCompile(`(?i)^[^\W\d][-\w]*$`)

// IsValidAttrName reports whether name matches the attribute-name grammar.
func IsValidAttrName(name string) bool {
	return attrNameRe.MatchString(name)
}

// AttrMap is an ordered mapping from attribute name to value, preserving
// insertion order where iteration is observable (§3 "Attribute").
// Undefined and empty are distinct: Unset removes a name entirely (so
// Defined reports false and substitution drops lines referencing it);
// Set with an empty string leaves it defined with no text.
//
// Grounded on the original tool's OrderedDict, reshaped as an explicit Go
// value the way the teacher's ExpandingDecoder keeps its `defs` map as a
// struct field rather than a module global.
type AttrMap struct {
	order  []string
	values map[string]string
}

// NewAttrMap returns an empty, ready-to-use AttrMap.
func NewAttrMap() *AttrMap {
	return &AttrMap{values: map[string]string{}}
}

// Set defines name with value, appending it to iteration order the first
// time it is seen.
func (m *AttrMap) Set(name, value string) {
	if m.values == nil {
		m.values = map[string]string{}
	}
	if _, ok := m.values[name]; !ok {
		m.order = append(m.order, name)
	}
	m.values[name] = value
}

// Unset removes name, making it undefined.
func (m *AttrMap) Unset(name string) {
	if _, ok := m.values[name]; !ok {
		return
	}
	delete(m.values, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Get returns the value of name and whether it is defined.
func (m *AttrMap) Get(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Defined reports whether name currently has a value (possibly empty).
func (m *AttrMap) Defined(name string) bool {
	_, ok := m.values[name]
	return ok
}

// Empty reports whether name is defined and its value is the empty string.
func (m *AttrMap) Empty(name string) bool {
	v, ok := m.values[name]
	return ok && v == ""
}

// Keys returns attribute names in insertion order.
func (m *AttrMap) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Merge copies every entry of other into m, preserving other's order for
// newly-seen names. Used when cascading [attributes] sections (§4.3).
func (m *AttrMap) Merge(other *AttrMap) {
	for _, name := range other.order {
		m.Set(name, other.values[name])
	}
}

// Clone returns an independent copy of m.
func (m *AttrMap) Clone() *AttrMap {
	c := NewAttrMap()
	c.Merge(m)
	return c
}

// parseAttributes parses a macro/quote/table attrlist `1,2,name=val,...`
// into positional keys "1","2",... and named keys, following §4.5's
// "parse attrlist into a dictionary (positional args plus named arguments)".
// It also derives `<opt>-option` boolean entries from an `options=` value.
func parseAttributes(s string, out map[string]string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	fields := splitAttrList(s)
	pos := 1
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			pos++
			continue
		}
		if i := indexUnquoted(f, '='); i >= 0 {
			name := strings.TrimSpace(f[:i])
			val := strip_quotes(strings.TrimSpace(f[i+1:]))
			out[name] = val
			if name == "options" || name == "opts" {
				for _, opt := range strings.Split(val, ",") {
					opt = strings.TrimSpace(opt)
					if opt != "" {
						out[opt+"-option"] = ""
					}
				}
			}
		} else {
			out[strconv.Itoa(pos)] = strip_quotes(f)
			pos++
		}
	}
}

// splitAttrList splits an attribute list on commas that are not inside
// single or double quotes.
func splitAttrList(s string) []string {
	var fields []string
	var cur strings.Builder
	var quote rune
	for _, ch := range s {
		switch {
		case quote != 0:
			cur.WriteRune(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
			cur.WriteRune(ch)
		case ch == ',':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

func indexUnquoted(s string, sep rune) int {
	var quote rune
	for i, ch := range s {
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		if ch == '\'' || ch == '"' {
			quote = ch
			continue
		}
		if ch == sep {
			return i
		}
	}
	return -1
}

// strip_quotes removes a single matching pair of leading/trailing quotes.
func strip_quotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
