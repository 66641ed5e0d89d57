package asciidoc

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/srackham/asciidoc/checks"
)

const engineTestConf = `
[tags]
emphasis=<em>|</em>
strong=<strong>|</strong>
para=<div class="paragraph"><p>|</p></div>
sect1=<div class="sect1"><h2 id="{id}">{title}</h2>|</div>

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
underlines==,-,~,^,+
`

func TestTranslateSimpleDocument(t *testing.T) {
	fsys := fstest.MapFS{
		"asciidoc.conf": &fstest.MapFile{Data: []byte(engineTestConf)},
		"doc.txt": &fstest.MapFile{Data: []byte(
			"Introduction\n" +
				"------------\n" +
				"\n" +
				"This is *bold* and _emphasised_ text.\n",
		)},
	}

	var out strings.Builder
	opts := Options{
		ConfFiles: []string{"asciidoc.conf"},
	}
	reporter, err := Translate(fsys, "doc.txt", &out, opts)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if reporter.HasErrors() {
		for _, d := range reporter.Diagnostics() {
			t.Log(d.String())
		}
		t.Fatal("Translate reported errors")
	}

	html := out.String()
	if msg := checks.HTML(html, "div.sect1>h2", "==", "Introduction"); msg != "" {
		t.Error(msg)
	}
	if msg := checks.HTML(html, "strong", "==", "bold"); msg != "" {
		t.Error(msg)
	}
	if msg := checks.HTML(html, "em", "==", "emphasised"); msg != "" {
		t.Error(msg)
	}
}

func TestTranslateUnsafeIncludeBlockedInSafeMode(t *testing.T) {
	fsys := fstest.MapFS{
		"asciidoc.conf": &fstest.MapFile{Data: []byte(engineTestConf)},
		"secret.txt":    &fstest.MapFile{Data: []byte("classified\n")},
		"doc.txt": &fstest.MapFile{Data: []byte(
			"include::../secret.txt[]\n",
		)},
	}
	var out strings.Builder
	opts := Options{ConfFiles: []string{"asciidoc.conf"}, Safe: true}
	reporter, err := Translate(fsys, "doc.txt", &out, opts)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !reporter.HasErrors() {
		t.Error("expected an error for an out-of-root include in safe mode")
	}
	if strings.Contains(out.String(), "classified") {
		t.Error("safe mode must not include content outside the document root")
	}
}
