package asciidoc

import "testing"

// Scenario 4 (§8): a PSV row with a `N*` cell-count multiplier expands into
// N copies of the cell text.
func TestSplitRowPSVCellCountMultiplier(t *testing.T) {
	got := SplitRow("| c | 2*d", "psv")
	want := []string{"c", "d", "d"}
	if len(got) != len(want) {
		t.Fatalf("SplitRow = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitRow[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseRowsPSVTwoRows(t *testing.T) {
	rows := ParseRows([]string{"| a | b", "| c | 2*d"}, "psv")
	if len(rows) != 2 {
		t.Fatalf("ParseRows returned %d rows, want 2", len(rows))
	}
	if len(rows[0]) != 2 || rows[0][0] != "a" || rows[0][1] != "b" {
		t.Errorf("rows[0] = %v, want [a b]", rows[0])
	}
	want := []string{"c", "d", "d"}
	if len(rows[1]) != len(want) {
		t.Fatalf("rows[1] = %v, want %v", rows[1], want)
	}
	for i := range want {
		if rows[1][i] != want[i] {
			t.Errorf("rows[1][%d] = %q, want %q", i, rows[1][i], want[i])
		}
	}
}

func TestSplitRowEscapedSeparator(t *testing.T) {
	got := SplitRow(`| a\|b | c`, "psv")
	want := []string{"a|b", "c"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("SplitRow = %v, want %v", got, want)
	}
}
