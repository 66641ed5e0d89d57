package asciidoc

import "regexp"

// blockTitleRe matches a BlockTitle line: `.Title text`, attached to the
// block that follows, distinct from a literal paragraph starting with a
// period because a lone "." is never a title (§3 "Block title", §4.6.2).
var blockTitleRe = regexp.MustCompile(`^\.([^.\s].*)$`)

// MatchBlockTitle recognizes line as a BlockTitle, returning the title text.
func MatchBlockTitle(line string) (string, bool) {
	m := blockTitleRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}
