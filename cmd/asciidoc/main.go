// Command asciidoc translates a lightweight-markup source document into a
// backend output format (HTML, DocBook) by running it through the
// configuration-driven translation pipeline in package asciidoc.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/srackham/asciidoc"
)

type attrFlags map[string]string

func (a attrFlags) String() string { return "" }

func (a attrFlags) Set(s string) error {
	if i := strings.IndexByte(s, '='); i >= 0 {
		a[s[:i]] = s[i+1:]
	} else {
		a[s] = ""
	}
	return nil
}

type confFlags []string

func (c *confFlags) String() string { return strings.Join(*c, ",") }
func (c *confFlags) Set(s string) error {
	*c = append(*c, s)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs_ := flag.NewFlagSet("asciidoc", flag.ContinueOnError)
	backend := fs_.String("backend", "html4", "output backend")
	doctype := fs_.String("doctype", "article", "document type: article, book, manpage")
	outFile := fs_.String("out-file", "", "output file (default: <docname>.<outfilesuffix>)")
	safe := fs_.Bool("safe", false, "disable unsafe includes and system macros")
	verbose := fs_.Bool("verbose", false, "print warnings and progress")
	confDirs := confFlags{}
	fs_.Var(&confDirs, "conf-dir", "additional configuration directory (repeatable)")
	confFiles := confFlags{}
	fs_.Var(&confFiles, "conf-file", "additional configuration file (repeatable)")
	attrs := attrFlags{}
	fs_.Var(attrs, "a", "set document attribute name[=value] or name! to unset (repeatable)")

	if err := fs_.Parse(args); err != nil {
		return 2
	}
	if fs_.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: asciidoc [options] infile")
		return 2
	}
	inPath := fs_.Arg(0)

	root := filepath.Dir(inPath)
	fsys := os.DirFS("/")
	absIn, err := filepath.Abs(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	_ = root
	relIn := strings.TrimPrefix(absIn, string(filepath.Separator))

	var out = os.Stdout
	outPath := *outFile
	if outPath == "" && !*verbose {
		// Default naming is backend-suffix-based; left to the caller via
		// -out-file since stdout is the simplest safe default here.
	}
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		out = f
	}

	opts := asciidoc.Options{
		Backend:    *backend,
		Doctype:    *doctype,
		ConfDirs:   confDirs,
		ConfFiles:  confFiles,
		Attributes: attrs,
		Safe:       *safe,
		Verbose:    *verbose,
	}

	reporter, err := asciidoc.Translate(fs.FS(fsys), relIn, out, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "asciidoc: %v\n", err)
		return 1
	}
	for _, d := range reporter.Diagnostics() {
		if d.Severity == asciidoc.SeverityWarning && !*verbose {
			continue
		}
		fmt.Fprintln(os.Stderr, d.String())
	}
	if reporter.HasErrors() {
		return 1
	}
	return 0
}
