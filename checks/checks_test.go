package checks_test

import (
	"testing"

	"github.com/srackham/asciidoc/checks"
)

func TestText(t *testing.T) {
	tests := []struct {
		op      string
		got     string
		want    string
		wantMsg bool
	}{
		{"==", "bold", "bold", false},
		{"==", "bold", "wrong", true},
		{"!=", "bold", "wrong", false},
		{"!=", "bold", "bold", true},
		{"~", "hello world", "^hello", false},
		{"~", "hello world", "^world", true},
		{"!~", "hello world", "^world", false},
		{"!~", "hello world", "^hello", true},
		{"contains", "hello world", "lo wo", false},
		{"contains", "hello world", "missing", true},
		{"!contains", "hello world", "missing", false},
		{"!contains", "hello world", "lo wo", true},
	}
	for _, tt := range tests {
		msg, valid := checks.Text("x", tt.op, tt.got, tt.want)
		if !valid {
			t.Fatalf("Text(%q, %q, %q): invalid check: %s", tt.op, tt.got, tt.want, msg)
		}
		if tt.wantMsg && msg == "" {
			t.Errorf("Text(%q, %q, %q): expected failure message, got none", tt.op, tt.got, tt.want)
		}
		if !tt.wantMsg && msg != "" {
			t.Errorf("Text(%q, %q, %q): unexpected failure: %s", tt.op, tt.got, tt.want, msg)
		}
	}
}

func TestTextRejectsEmptyWantForNonRegex(t *testing.T) {
	if _, valid := checks.Text("x", "==", "anything", ""); valid {
		t.Error("expected == with empty want to be flagged as an invalid check")
	}
}

func TestTextRejectsBadRegex(t *testing.T) {
	if _, valid := checks.Text("x", "~", "anything", "("); valid {
		t.Error("expected an unparseable regex to be flagged as an invalid check")
	}
}

func TestHTMLSelectorAndCount(t *testing.T) {
	body := `<div class="sect1"><h2 id="intro">Introduction</h2><p><strong>bold</strong> and <em>emphasised</em> text.</p></div>`

	if msg := checks.HTML(body, "div.sect1>h2", "==", "Introduction"); msg != "" {
		t.Error(msg)
	}
	if msg := checks.HTML(body, "strong", "==", "bold"); msg != "" {
		t.Error(msg)
	}
	if msg := checks.HTML(body, "em", "==", "emphasised"); msg != "" {
		t.Error(msg)
	}
	if msg := checks.HTML(body, "div.sect1 p", "count", "1"); msg != "" {
		t.Error(msg)
	}
	if msg := checks.HTML(body, "table", "count", "0"); msg != "" {
		t.Error(msg)
	}
}

func TestHTMLNoMatch(t *testing.T) {
	body := `<p>no sections here</p>`
	if msg := checks.HTML(body, "div.sect1>h2", "==", "Introduction"); msg == "" {
		t.Error("expected a failure message when the selector matches nothing")
	}
}
