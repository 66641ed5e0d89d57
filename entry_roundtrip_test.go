package asciidoc

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// formatEntry is the inverse of parseEntry, the "dump_section of a single
// pair" half of the §8 round-trip invariant.
func formatEntry(e entry) string {
	name := strings.ReplaceAll(e.Name, "=", `\=`)
	if !e.Defined {
		return name + "!"
	}
	return name + "=" + e.Value
}

// §8 Round-trips: "parse_entry followed by dump_section of a single pair
// yields the original pair modulo quoting normalization."
func TestParseEntryDumpRoundTrip(t *testing.T) {
	lines := []string{"foo=bar", "baz!", "qux=value with spaces", `weird\=name=val`}
	for _, line := range lines {
		e, err := parseEntry(line)
		if err != nil || e == nil {
			t.Fatalf("parseEntry(%q): %v", line, err)
		}
		dumped := formatEntry(*e)
		e2, err := parseEntry(dumped)
		if err != nil || e2 == nil {
			t.Fatalf("parseEntry(dumped %q): %v", dumped, err)
		}
		if diff := cmp.Diff(*e, *e2); diff != "" {
			t.Errorf("round-trip mismatch for %q (-want +got):\n%s", line, diff)
		}
	}
}
