package asciidoc

import "strings"

// DelimitedBlock is a recognized fenced block: an opening delimiter line
// matching a blockdef-*'s Delim pattern, a body read up to the matching
// closing delimiter in the same file (§4.6.7's "a delimiter inside an
// included file cannot close an outer block"), and a closing delimiter
// line (§3 "Delimited block").
type DelimitedBlock struct {
	Def   *BlockDef
	Body  []string
	Attrs map[string]string
	Title string
}

// RecognizeDelimiter matches line against every configured blockdef-*'s
// opening delimiter pattern.
func RecognizeDelimiter(cfg *Config, line string) (*BlockDef, bool) {
	for _, def := range cfg.BlockDefs {
		if def.Delim != nil && def.Delim.MatchString(line) {
			return def, true
		}
	}
	return nil, false
}

// Render writes the block body through its configured subs, wrapped by the
// block's template tag; literal/verbatim-style blocks with Options["skip"]
// are callout-registered without further inline processing beyond subs.
func (d *DelimitedBlock) Render(e *Evaluator, w *Writer) {
	tag, ok := e.Config.Tags[d.Def.Template]
	content := strings.Join(d.Body, "\n")
	if !ok {
		w.Write(e.Subs(content, d.Def.Subs)...)
		return
	}
	attrs := d.Attrs
	if attrs == nil {
		attrs = map[string]string{}
	}
	if d.Title != "" {
		attrs["title"] = d.Title
	}
	w.WriteTag(tag, content, d.Def.Subs, e, attrs)
}
