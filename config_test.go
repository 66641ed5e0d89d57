package asciidoc

import (
	"testing"
	"testing/fstest"
)

const miniConf = `
[tags]
emphasis=<em>|</em>
strong=<strong>|</strong>
para=<p>|</p>

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

[attributes]
siteurl=https://example.org
`

func loadMiniConf(t *testing.T) *Config {
	t.Helper()
	fsys := fstest.MapFS{
		"asciidoc.conf": &fstest.MapFile{Data: []byte(miniConf)},
	}
	cfg := NewConfig()
	if err := cfg.LoadFile(fsys, "asciidoc.conf"); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return cfg
}

func TestConfigLoadFileParsesSections(t *testing.T) {
	cfg := loadMiniConf(t)

	if tag, ok := cfg.Tags["emphasis"]; !ok || tag.Start != "<em>" || tag.End != "</em>" {
		t.Errorf("tags[emphasis] = %+v", tag)
	}
	if cfg.SpecialChars["<"] != "&lt;" {
		t.Errorf("specialcharacters[<] = %q", cfg.SpecialChars["<"])
	}
	if len(cfg.Quotes) != 2 {
		t.Fatalf("len(Quotes) = %d, want 2", len(cfg.Quotes))
	}
	if v, ok := cfg.Attributes.Get("siteurl"); !ok || v != "https://example.org" {
		t.Errorf("attributes[siteurl] = %q, %v", v, ok)
	}
	if def, ok := cfg.ParaDefs["default"]; !ok || def.Template != "para" {
		t.Errorf("paradef-default = %+v", def)
	}
}

func TestConfigValidateCatchesMissingTag(t *testing.T) {
	cfg := loadMiniConf(t)
	cfg.Quotes = append(cfg.Quotes, QuoteDef{Left: "#", Right: "#", Tag: "nonexistent"})
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate to report missing tag")
	}
}

func TestConfigEntrySectionMergesAcrossLoads(t *testing.T) {
	fsys := fstest.MapFS{
		"a.conf": &fstest.MapFile{Data: []byte("[tags]\nfoo=<foo>|</foo>\n")},
		"b.conf": &fstest.MapFile{Data: []byte("[tags]\nbar=<bar>|</bar>\n")},
	}
	cfg := NewConfig()
	if err := cfg.LoadFile(fsys, "a.conf"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.LoadFile(fsys, "b.conf"); err != nil {
		t.Fatal(err)
	}
	if _, ok := cfg.Tags["foo"]; !ok {
		t.Error("expected foo tag to survive a second load (entry sections merge)")
	}
	if _, ok := cfg.Tags["bar"]; !ok {
		t.Error("expected bar tag from second load")
	}
}
