package asciidoc

import (
	"fmt"
	"regexp"
	"strings"
)

// BlockDef is a configuration-driven block recognizer definition shared by
// paragraphs (paradef-*), delimited blocks (blockdef-*) and block macros:
// a pattern that recognizes the block's opening, the substitutions applied
// to its body, and the tag used to wrap the rendered result (§3 "Block
// definition", §4.3).
//
// Grounded on the original tool's Paragraph/DelimitedBlock classes, which
// are themselves thin wrappers around a conf-section dictionary; here that
// dictionary is a typed struct instead of an untyped map.
type BlockDef struct {
	Name     string
	Delim    *regexp.Regexp // delimiter line pattern for delimited blocks; nil for paragraphs
	Template string          // tag name in Config.Tags
	Subs     []string
	Style    string
	Options  map[string]bool
	Posattrs []string
}

// ListDef is one listdef-* entry: the recognizer for one list variant
// (bulleted, numbered, labeled, callout) (§3 "List").
type ListDef struct {
	Name     string
	ListType string // "bulleted", "numbered", "labeled", "callout"
	ItemRe   *regexp.Regexp
	Tags     string // listtags-* name
	Subs     []string
}

// ListTagSet is a [listtags-*] section: the tag templates used to wrap a
// list, its items, and item text.
type ListTagSet map[string]TagTemplate

// TableDef is one tabledef-* entry (§3 "Table", §4.7).
type TableDef struct {
	Name     string
	Format   string // "psv", "csv", "dsv"
	Template string
	Tags     string // tabletags-* name
	Subs     []string
}

// TableTagSet is a [tabletags-*] section: colspec/bodyrow/bodydata/
// paragraph plus optional headrow/headdata/footrow/footdata, the last four
// inheriting from the body set when absent (§4.7 invariant).
type TableTagSet map[string]TagTemplate

func sectionPrefix(name, prefix string) (string, bool) {
	if strings.HasPrefix(name, prefix) {
		return strings.TrimPrefix(name, prefix), true
	}
	return "", false
}

// parseBlockFamily scans every loaded section for the paradef-/listdef-/
// blockdef-/tabledef-/listtags-/tabletags- families and builds the typed
// tables consulted by the lexer and recognizers.
func (c *Config) parseBlockFamily() error {
	for name, lines := range c.Sections {
		switch {
		case strings.HasPrefix(name, "paradef-"):
			def, err := c.parseOneBlockDef(name, lines, false)
			if err != nil {
				return err
			}
			suffix, _ := sectionPrefix(name, "paradef-")
			c.ParaDefs[suffix] = def
		case strings.HasPrefix(name, "blockdef-"):
			def, err := c.parseOneBlockDef(name, lines, true)
			if err != nil {
				return err
			}
			suffix, _ := sectionPrefix(name, "blockdef-")
			c.BlockDefs[suffix] = def
		case strings.HasPrefix(name, "listdef-"):
			def, err := c.parseOneListDef(name, lines)
			if err != nil {
				return err
			}
			suffix, _ := sectionPrefix(name, "listdef-")
			c.ListDefs[suffix] = def
		case strings.HasPrefix(name, "tabledef-"):
			def, err := c.parseOneTableDef(name, lines)
			if err != nil {
				return err
			}
			suffix, _ := sectionPrefix(name, "tabledef-")
			c.TableDefs[suffix] = def
		case strings.HasPrefix(name, "listtags-"):
			suffix, _ := sectionPrefix(name, "listtags-")
			c.ListTags[suffix] = c.parseTagSet(lines)
		case strings.HasPrefix(name, "tabletags-"):
			suffix, _ := sectionPrefix(name, "tabletags-")
			c.TableTags[suffix] = c.parseTagSet(lines)
		}
	}
	return nil
}

func (c *Config) parseTagSet(lines []string) map[string]TagTemplate {
	set := map[string]TagTemplate{}
	entries, _ := parseEntries(lines)
	for _, e := range entries {
		if !e.Defined || e.Value == "" {
			set[e.Name] = TagTemplate{}
			continue
		}
		if i := strings.Index(e.Value, "|"); i >= 0 {
			set[e.Name] = TagTemplate{Start: e.Value[:i], End: e.Value[i+1:]}
		} else {
			set[e.Name] = TagTemplate{Start: e.Value}
		}
	}
	return set
}

func (c *Config) parseOneBlockDef(section string, lines []string, delimited bool) (*BlockDef, error) {
	entries, err := parseEntries(lines)
	if err != nil {
		return nil, fmt.Errorf("[%s]: %w", section, err)
	}
	def := &BlockDef{Name: section, Options: map[string]bool{}}
	for _, e := range entries {
		switch e.Name {
		case "delimiter":
			if delimited {
				re, err := regexp.Compile(e.Value)
				if err != nil {
					return nil, fmt.Errorf("[%s] delimiter: %w", section, err)
				}
				def.Delim = re
			}
		case "template":
			def.Template = e.Value
		case "style":
			def.Style = e.Value
		case "subs":
			def.Subs = splitSubsList(e.Value)
		case "posattrs":
			def.Posattrs = splitSubsList(e.Value)
		case "options":
			for _, o := range splitSubsList(e.Value) {
				def.Options[o] = true
			}
		}
	}
	if len(def.Subs) == 0 {
		def.Subs = DefaultSubsNormal
	}
	return def, nil
}

func (c *Config) parseOneListDef(section string, lines []string) (*ListDef, error) {
	entries, err := parseEntries(lines)
	if err != nil {
		return nil, fmt.Errorf("[%s]: %w", section, err)
	}
	def := &ListDef{Name: section}
	for _, e := range entries {
		switch e.Name {
		case "type":
			def.ListType = e.Value
		case "itemtype":
			def.ListType = e.Value
		case "delimiter", "listitem":
			re, err := regexp.Compile(e.Value)
			if err != nil {
				return nil, fmt.Errorf("[%s] %s: %w", section, e.Name, err)
			}
			def.ItemRe = re
		case "tags":
			def.Tags = e.Value
		case "subs":
			def.Subs = splitSubsList(e.Value)
		}
	}
	if len(def.Subs) == 0 {
		def.Subs = DefaultSubsNormal
	}
	return def, nil
}

func (c *Config) parseOneTableDef(section string, lines []string) (*TableDef, error) {
	entries, err := parseEntries(lines)
	if err != nil {
		return nil, fmt.Errorf("[%s]: %w", section, err)
	}
	def := &TableDef{Name: section, Format: "psv"}
	for _, e := range entries {
		switch e.Name {
		case "format":
			def.Format = e.Value
		case "template":
			def.Template = e.Value
		case "tags":
			def.Tags = e.Value
		case "subs":
			def.Subs = splitSubsList(e.Value)
		}
	}
	if len(def.Subs) == 0 {
		def.Subs = DefaultSubsNormal
	}
	return def, nil
}

// validateBlockFamily checks the structural invariants of §4.7/§3: every
// list/table def names an existing tag set, and every table tag set has at
// least bodyrow/bodydata/paragraph, with head/foot falling back to body.
func (c *Config) validateBlockFamily() error {
	for name, def := range c.ListDefs {
		if def.Tags != "" {
			if _, ok := c.ListTags[def.Tags]; !ok {
				return fmt.Errorf("[listdef-%s] refers to missing [listtags-%s]", name, def.Tags)
			}
		}
	}
	for name, def := range c.TableDefs {
		tagsName := def.Tags
		if tagsName == "" {
			tagsName = name
		}
		tags, ok := c.TableTags[tagsName]
		if !ok {
			return fmt.Errorf("[tabledef-%s] refers to missing [tabletags-%s]", name, tagsName)
		}
		for _, required := range []string{"bodyrow", "bodydata", "paragraph"} {
			if _, ok := tags[required]; !ok {
				return fmt.Errorf("[tabletags-%s] missing required entry %q", tagsName, required)
			}
		}
		for _, fallback := range []struct{ want, from string }{
			{"headrow", "bodyrow"}, {"headdata", "bodydata"},
			{"footrow", "bodyrow"}, {"footdata", "bodydata"},
		} {
			if _, ok := tags[fallback.want]; !ok {
				tags[fallback.want] = tags[fallback.from]
			}
		}
	}
	for name, def := range c.BlockDefs {
		if def.Template != "" {
			if _, ok := c.Tags[def.Template]; !ok {
				return fmt.Errorf("[blockdef-%s] refers to missing tag %q", name, def.Template)
			}
		}
	}
	return nil
}
