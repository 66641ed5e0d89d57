package asciidoc

import "regexp"

// attrListRe matches a standalone AttributeList line: `[attr1,attr2,...]`,
// attached to the block that immediately follows it (§3 "Attribute list",
// §4.6.3).
var attrListRe = regexp.MustCompile(`^\[(?P<attrlist>.*)\]\s*$`)

// MatchAttrList recognizes line as an AttributeList, returning its parsed
// positional/named attributes.
func MatchAttrList(line string) (map[string]string, bool) {
	m := attrListRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	attrs := map[string]string{}
	parseAttributes(m[1], attrs)
	return attrs, true
}

// StyleOf returns the block style named by an attribute list: either the
// unnamed first positional argument, or the explicit "style" key, following
// the original tool's AttributeList.consume()/Lex.dump() convention.
func StyleOf(attrs map[string]string) (string, bool) {
	if s, ok := attrs["style"]; ok {
		return s, true
	}
	if s, ok := attrs["1"]; ok {
		return s, true
	}
	return "", false
}
