package asciidoc

import (
	"fmt"
	"regexp"
	"strings"
)

// MacroDef is one [macros] entry: a regular expression with named capture
// groups (conventionally "name", "target", "attrlist") and the tag used to
// render a match (§3 "Macro", §4.5).
//
// A name prefixed with "+" is a system macro (eval/sys/sys2/include/
// include1/template) applied as a line-replacement action rather than an
// inline tag expansion; those are handled directly by the Reader and are
// not registered here.
//
// Grounded on the original tool's Macro class and [macros] conf section.
type MacroDef struct {
	Pattern *regexp.Regexp
	Tag     string
}

func (m MacroDef) names() []string { return m.Pattern.SubexpNames() }

// Apply finds every match of m.Pattern in line and replaces it with the
// expansion of the tag named by the match's "name" group (or m.Tag if the
// pattern has no such group), substituting "target" and "attrlist" into the
// tag's attribute overlay.
func (m MacroDef) Apply(e *Evaluator, line string) string {
	return m.Pattern.ReplaceAllStringFunc(line, func(match string) string {
		groups := m.Pattern.FindStringSubmatch(match)
		names := m.names()
		overlay := map[string]string{}
		tagName := m.Tag
		for i, g := range groups {
			if i == 0 || i >= len(names) {
				continue
			}
			switch names[i] {
			case "name":
				if g != "" {
					tagName = g
				}
			case "target":
				overlay["target"] = g
			case "attrlist":
				parseAttributes(g, overlay)
				overlay["0"] = g
			default:
				if names[i] != "" {
					overlay[names[i]] = g
				}
			}
		}
		tag, ok := e.Config.Tags[tagName]
		if !ok {
			return match
		}
		stag, etag := tag.Expand(e, overlay)
		content := overlay["target"]
		return stag + content + etag
	})
}

// parseMacros parses the [macros] section: each entry's name is a regular
// expression (optionally quoted) and its value is the tag name to expand
// matches with. A trailing "!" on the name deletes a previously-defined
// macro (matching the general entry-deletion convention used throughout
// the configuration format).
func (c *Config) parseMacros() error {
	entries, err := parseEntries(c.Sections["macros"])
	if err != nil {
		return fmt.Errorf("[macros]: %w", err)
	}
	for _, e := range entries {
		pat := strip_quotes(e.Name)
		if !e.Defined {
			var kept []MacroDef
			for _, d := range c.Macros {
				if d.Pattern.String() != pat {
					kept = append(kept, d)
				}
			}
			c.Macros = kept
			continue
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return fmt.Errorf("[macros] entry is not a valid regular expression: %s", pat)
		}
		c.Macros = append(c.Macros, MacroDef{Pattern: re, Tag: strings.TrimSpace(e.Value)})
	}
	return nil
}
