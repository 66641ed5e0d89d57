package asciidoc

import "testing"

func newTestEvaluator(t *testing.T) (*Evaluator, *AttrMap) {
	t.Helper()
	cfg := NewConfig()
	attrs := NewAttrMap()
	return NewEvaluator(cfg, attrs, SafeRoot{}, &Reporter{}), attrs
}

// Scenario 1 (§8): a defined attribute's `?` conditional yields its rval,
// an undefined one yields "".
func TestSubstituteConditionalDefined(t *testing.T) {
	e, attrs := newTestEvaluator(t)
	attrs.Set("x", "one")

	got, ok := e.Substitute("{x?yes}{y?no}")
	if !ok {
		t.Fatal("expected Substitute to succeed, got drop")
	}
	if got != "yes" {
		t.Errorf("Substitute = %q, want %q", got, "yes")
	}
}

func TestSubstituteConditionalOperators(t *testing.T) {
	e, attrs := newTestEvaluator(t)
	attrs.Set("x", "one")

	tests := []struct {
		line string
		want string
	}{
		{"{x=other}", "one"},   // defined: lval
		{"{y=other}", "other"}, // undefined: rval
		{"{x!no}", ""},         // defined: ""
		{"{y!no}", "no"},       // undefined: rval
		{"{x#keep}", "one"},    // defined: lval
	}
	for _, tt := range tests {
		got, ok := e.Substitute(tt.line)
		if !ok {
			t.Fatalf("%s: expected ok, line dropped", tt.line)
		}
		if got != tt.want {
			t.Errorf("Substitute(%s) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

// Scenario 2 (§8): a plain undefined simple attribute reference drops the
// whole line.
func TestSubstituteUndefinedSimpleReferenceDropsLine(t *testing.T) {
	e, _ := newTestEvaluator(t)

	_, ok := e.Substitute("before {missing} after")
	if ok {
		t.Error("expected an undefined simple reference to drop the line")
	}
}

// `#` on an undefined attribute also drops the line; `%` drops only when
// defined.
func TestSubstituteHashAndPercentDropSemantics(t *testing.T) {
	e, attrs := newTestEvaluator(t)
	attrs.Set("x", "one")

	if _, ok := e.Substitute("{y#keep}"); ok {
		t.Error("expected {y#keep} to drop the line (y undefined)")
	}
	if _, ok := e.Substitute("{x%drop}"); ok {
		t.Error("expected {x%drop} to drop the line (x defined)")
	}
	got, ok := e.Substitute("{y%keep}")
	if !ok || got != "keep" {
		t.Errorf("Substitute({y%%keep}) = %q, %v, want %q, true", got, ok, "keep")
	}
}

func TestSubstituteRegexConditionalOperators(t *testing.T) {
	e, attrs := newTestEvaluator(t)
	attrs.Set("backend", "html5")

	got, ok := e.Substitute("{backend@^html:is-html:not-html}")
	if !ok || got != "is-html" {
		t.Errorf("@ match: got %q, %v, want %q, true", got, ok, "is-html")
	}
	got, ok = e.Substitute("{backend@^docbook:is-docbook}")
	if !ok || got != "" {
		t.Errorf("@ no-match no-v2: got %q, %v, want %q, true", got, ok, "")
	}
	if _, ok := e.Substitute("{backend$^docbook:is-docbook}"); ok {
		t.Error("$ with no match and no v2 should drop the line")
	}
}

// Scenario 3 (§8): a quoted span renders its tag, and an escaped delimiter
// is left as literal text with the backslash stripped.
func TestSubsQuotesRendersAndHonoursEscape(t *testing.T) {
	cfg := NewConfig()
	cfg.Tags = map[string]TagTemplate{
		"strong": {Start: "<strong>", End: "</strong>"},
	}
	cfg.Quotes = []QuoteDef{{Left: "*", Right: "*", Tag: "strong"}}
	e := NewEvaluator(cfg, NewAttrMap(), SafeRoot{}, &Reporter{})

	got := e.subsQuotes("a *bold* b")
	want := "a <strong>bold</strong> b"
	if got != want {
		t.Errorf("subsQuotes = %q, want %q", got, want)
	}

	got = e.subsQuotes(`a \*literal* b`)
	want = "a *literal* b"
	if got != want {
		t.Errorf("subsQuotes escaped = %q, want %q", got, want)
	}
}
