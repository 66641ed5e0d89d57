package asciidoc

import (
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

// Scenario 6 (§8): a self-including file terminates after the include depth
// limit instead of recursing forever, and degrades to the raw include line.
func TestTranslateSelfIncludeCycleTerminates(t *testing.T) {
	fsys := fstest.MapFS{
		"asciidoc.conf": &fstest.MapFile{Data: []byte(engineTestConf)},
		"doc.txt": &fstest.MapFile{Data: []byte(
			"include::doc.txt[]\n",
		)},
	}
	var out strings.Builder
	opts := Options{ConfFiles: []string{"asciidoc.conf"}}

	done := make(chan error, 1)
	go func() {
		_, err := Translate(fsys, "doc.txt", &out, opts)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Translate did not terminate a self-include cycle")
	}

	if !strings.Contains(out.String(), "include::doc.txt[]") {
		t.Error("expected the raw include line once the depth limit is hit")
	}
}
