package asciidoc

import "strings"

// ListItem is one recognized item of a bulleted, numbered, labeled, or
// callout list (§3 "List", §4.6.6).
type ListItem struct {
	Label string // labeled-list term; empty for bulleted/numbered
	Text  string
	Lines []string // continuation/attached-content lines
}

// List is a recognized run of same-level, same-type list items.
type List struct {
	Def   *ListDef
	Items []ListItem
}

// RecognizeListItem matches line against every configured listdef-* and
// returns the definition and the item's own text, the longest matching
// marker winning when more than one listdef could apply (e.g. "-" vs "--").
func RecognizeListItem(cfg *Config, line string) (*ListDef, ListItem, bool) {
	var best *ListDef
	var bestItem ListItem
	bestLen := -1
	for _, def := range cfg.ListDefs {
		if def.ItemRe == nil {
			continue
		}
		m := def.ItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		matchLen := len(m[0])
		if matchLen <= bestLen {
			continue
		}
		item := ListItem{}
		names := def.ItemRe.SubexpNames()
		for i, g := range m {
			if i == 0 || i >= len(names) {
				continue
			}
			switch names[i] {
			case "label":
				item.Label = strings.TrimSpace(g)
			case "text":
				item.Text = strings.TrimSpace(g)
			}
		}
		if item.Text == "" && len(m) > 1 {
			item.Text = strings.TrimSpace(m[len(m)-1])
		}
		best = def
		bestItem = item
		bestLen = matchLen
	}
	if best == nil {
		return nil, ListItem{}, false
	}
	return best, bestItem, true
}

// Render wraps the list and each item using the list's listtags-* set.
func (l *List) Render(e *Evaluator, w *Writer) {
	if l.Def == nil {
		return
	}
	tags := e.Config.ListTags[l.Def.Tags]
	if t, ok := tags["list"]; ok {
		stag, _ := t.Expand(e, nil)
		if stag != "" {
			w.WriteLine(stag)
		}
	}
	for _, item := range l.Items {
		l.renderItem(e, w, tags, item)
	}
	if t, ok := tags["list"]; ok {
		_, etag := t.Expand(e, nil)
		if etag != "" {
			w.WriteLine(etag)
		}
	}
}

func (l *List) renderItem(e *Evaluator, w *Writer, tags ListTagSet, item ListItem) {
	overlay := map[string]string{"label": item.Label}
	if t, ok := tags["item"]; ok {
		stag, etag := t.Expand(e, overlay)
		if stag != "" {
			w.WriteLine(stag)
		}
		body := item.Text
		if len(item.Lines) > 0 {
			body = body + "\n" + strings.Join(item.Lines, "\n")
		}
		w.Write(e.Subs(body, l.Def.Subs)...)
		if etag != "" {
			w.WriteLine(etag)
		}
	}
}
