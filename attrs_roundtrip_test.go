package asciidoc

import (
	"sort"
	"strconv"
	"testing"

	"kr.dev/diff"
)

// formatAttrDict is the inverse of parseAttributes for the simple case of no
// embedded commas/quotes in values, used only to exercise the §8 round-trip
// invariant: "parse_attributes then formatting back produces a string that
// re-parses to the same dictionary."
func formatAttrDict(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, err := strconv.Atoi(k); err == nil {
			parts = append(parts, m[k])
		} else {
			parts = append(parts, k+`="`+m[k]+`"`)
		}
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}

func TestParseAttributesRoundTrip(t *testing.T) {
	original := map[string]string{}
	parseAttributes(`quote,attribution="John Doe",anchor=xyz`, original)

	dumped := formatAttrDict(original)
	reparsed := map[string]string{}
	parseAttributes(dumped, reparsed)

	diff.Test(t, t.Errorf, reparsed, original)
}
