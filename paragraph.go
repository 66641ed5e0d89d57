package asciidoc

import "strings"

// Paragraph is a recognized paragraph block: one or more contiguous
// non-blank lines, wrapped by the tag named in its BlockDef (§3
// "Paragraph", §4.6.5).
type Paragraph struct {
	Def   *BlockDef
	Lines []string
	Attrs map[string]string
}

// RecognizeParagraph matches the first line of a paragraph against every
// configured paradef-* admonition/style prefix (longest match wins) and
// falls back to the "default" paradef when nothing more specific applies.
func RecognizeParagraph(cfg *Config, firstLine string, attrs map[string]string) (*BlockDef, map[string]string) {
	if style, ok := StyleOf(attrs); ok {
		if def, ok := cfg.ParaDefs[style]; ok {
			return def, attrs
		}
	}
	var best *BlockDef
	bestLen := -1
	for name, def := range cfg.ParaDefs {
		if name == "default" {
			continue
		}
		prefix, ok := def.Style, def.Style != ""
		if !ok {
			continue
		}
		if strings.HasPrefix(firstLine, prefix+":") && len(prefix) > bestLen {
			best = def
			bestLen = len(prefix)
		}
	}
	if best != nil {
		out := map[string]string{}
		for k, v := range attrs {
			out[k] = v
		}
		rest := strings.TrimPrefix(firstLine, best.Style+":")
		out["text"] = strings.TrimSpace(rest)
		return best, out
	}
	if def, ok := cfg.ParaDefs["default"]; ok {
		return def, attrs
	}
	return nil, attrs
}

// Render joins the paragraph's lines, runs the configured subs, and wraps
// the result in the block's tag.
func (p *Paragraph) Render(e *Evaluator, w *Writer) {
	if p.Def == nil {
		w.Write(p.Lines...)
		return
	}
	tag, ok := e.Config.Tags[p.Def.Template]
	if !ok {
		w.Write(e.Subs(strings.Join(p.Lines, "\n"), p.Def.Subs)...)
		return
	}
	content := strings.Join(p.Lines, "\n")
	w.WriteTag(tag, content, p.Def.Subs, e, p.Attrs)
}
