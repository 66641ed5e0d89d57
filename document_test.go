package asciidoc

import (
	"strings"
	"testing"
	"testing/fstest"
)

const listTestConf = `
[tags]
emphasis=<em>|</em>
strong=<strong>|</strong>
para=<p>|</p>
listingblock=<pre>|</pre>
callout=<i>|</i>

[specialcharacters]
<=&lt;
>=&gt;
&=&amp;

[quotes]
*=strong
_=emphasis

[paradef-default]
template=para
subs=specialcharacters,quotes

[titles]
underlines=-,~

[listdef-numbered]
itemtype=numbered
listitem=^(?P<label>\d+)\.\s+(?P<text>.*)$
tags=numbered

[listtags-numbered]
list=<ol>|</ol>
item=<li>|</li>

[listdef-callout]
itemtype=callout
listitem=^<(?P<label>\d+)>\s+(?P<text>.*)$
tags=callout

[listtags-callout]
list=<ol>|</ol>
item=<li>|</li>

[blockdef-listing]
delimiter=^----$
template=listingblock
subs=specialcharacters,callouts
`

// Scenario 5 (§8): a numbered list that skips a number produces a warning
// naming the offending item, but still renders every item.
func TestTranslateNumberedListOutOfSequenceWarns(t *testing.T) {
	fsys := fstest.MapFS{
		"asciidoc.conf": &fstest.MapFile{Data: []byte(listTestConf)},
		"doc.txt": &fstest.MapFile{Data: []byte(
			"1. first\n3. third\n",
		)},
	}
	var out strings.Builder
	opts := Options{ConfFiles: []string{"asciidoc.conf"}}
	reporter, err := Translate(fsys, "doc.txt", &out, opts)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	found := false
	for _, d := range reporter.Diagnostics() {
		if strings.Contains(d.Message, "list item 3 out of sequence") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an out-of-sequence warning, got: %v", reporter.Diagnostics())
	}
	if !strings.Contains(out.String(), "first") || !strings.Contains(out.String(), "third") {
		t.Error("expected both list items to still render")
	}
}

// §8 callout correlation invariant: a callout-list item referencing a mark
// never registered by the preceding listing block produces a warning.
func TestTranslateCalloutCorrelationWarnsOnUnregisteredMark(t *testing.T) {
	fsys := fstest.MapFS{
		"asciidoc.conf": &fstest.MapFile{Data: []byte(listTestConf)},
		"doc.txt": &fstest.MapFile{Data: []byte(
			"----\n"+
				"line one <1>\n"+
				"line two\n"+
				"----\n"+
				"<3> explanation\n",
		)},
	}
	var out strings.Builder
	opts := Options{ConfFiles: []string{"asciidoc.conf"}}
	reporter, err := Translate(fsys, "doc.txt", &out, opts)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	found := false
	for _, d := range reporter.Diagnostics() {
		if strings.Contains(d.Message, "callout <3> not found in preceding listing") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a callout-correlation warning, got: %v", reporter.Diagnostics())
	}
}
