package asciidoc

import (
	"regexp"
	"strings"
)

// underlineChars are the five §4.6.4 underline characters, index == section
// level (0 = document title through 4 = level-4 section), in the order the
// original tool's [titles] underlines entry lists them.
var underlineChars = [5]string{"=", "-", "~", "^", "+"}

// oneLineTitleRe matches the single-line `== Section Title` form, where the
// run of leading (and, if present, matching trailing) `=` gives the level.
var oneLineTitleRe = regexp.MustCompile(`^(=+)\s+(\S.*?)\s*(?:\1)?\s*$`)

// Title is a recognized section (or document) title.
type Title struct {
	Text  string
	Level int
}

// MatchOneLineTitle recognizes the `== Title` form used throughout §4.6.4.
func MatchOneLineTitle(line string) (Title, bool) {
	m := oneLineTitleRe.FindStringSubmatch(line)
	if m == nil {
		return Title{}, false
	}
	level := len(m[1]) - 1
	if level < 0 || level > 4 {
		return Title{}, false
	}
	return Title{Text: m[2], Level: level}, true
}

// MatchTwoLineTitle recognizes the two-line underlined form: a non-blank
// text line followed by a line consisting solely of one underline
// character repeated, whose length is within two characters of the title
// line's displayed width (the original tool's permissive length match).
func MatchTwoLineTitle(text, underline string, cfg *TitleConfig) (Title, bool) {
	text = strings.TrimRight(text, " \t")
	underline = strings.TrimRight(underline, " \t")
	if text == "" || underline == "" {
		return Title{}, false
	}
	chars := underlineChars
	if cfg != nil {
		for i, u := range cfg.Underlines {
			if u != "" {
				chars[i] = u
			}
		}
	}
	ch := rune(underline[0])
	for _, c := range underline {
		if c != ch {
			return Title{}, false
		}
	}
	for level, want := range chars {
		if want == string(ch) {
			if lengthClose(len(underline), len([]rune(text))) {
				return Title{Text: text, Level: level}, true
			}
		}
	}
	return Title{}, false
}

func lengthClose(underlineLen, textLen int) bool {
	d := underlineLen - textLen
	if d < 0 {
		d = -d
	}
	return d <= 3
}

// synthesizeID derives a section anchor ID from its title text, matching
// the original tool's make_id: lowercase, non-identifier runs collapse to a
// single underscore, leading/trailing underscores trimmed, prefixed "_" to
// avoid colliding with a numeric-looking result.
func synthesizeID(title string) string {
	var b strings.Builder
	prevUnderscore := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	id := strings.Trim(b.String(), "_")
	if id == "" {
		id = "_"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return id
}
