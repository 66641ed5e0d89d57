package asciidoc

import "testing"

func TestAttrMapDefinedVsEmpty(t *testing.T) {
	m := NewAttrMap()
	m.Set("empty", "")
	m.Set("full", "value")

	if !m.Defined("empty") {
		t.Error("empty should be defined")
	}
	if !m.Empty("empty") {
		t.Error("empty should report Empty")
	}
	if m.Empty("full") {
		t.Error("full should not report Empty")
	}
	if m.Defined("missing") {
		t.Error("missing should not be defined")
	}

	m.Unset("full")
	if m.Defined("full") {
		t.Error("full should be undefined after Unset")
	}
}

func TestAttrMapOrderPreserved(t *testing.T) {
	m := NewAttrMap()
	m.Set("b", "2")
	m.Set("a", "1")
	m.Set("b", "20")
	got := m.Keys()
	want := []string{"b", "a"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestParseAttributes(t *testing.T) {
	out := map[string]string{}
	parseAttributes(`quote,attribution="John Doe",options="compact,numbered"`, out)

	if out["1"] != "quote" {
		t.Errorf("positional arg = %q, want quote", out["1"])
	}
	if out["attribution"] != "John Doe" {
		t.Errorf("attribution = %q, want John Doe", out["attribution"])
	}
	if _, ok := out["compact-option"]; !ok {
		t.Error("expected compact-option to be derived from options=")
	}
	if _, ok := out["numbered-option"]; !ok {
		t.Error("expected numbered-option to be derived from options=")
	}
}

func TestIsValidAttrName(t *testing.T) {
	if !IsValidAttrName("my-attr") {
		t.Error("my-attr should be valid")
	}
	if IsValidAttrName("1leading") {
		t.Error("1leading should be invalid")
	}
}
