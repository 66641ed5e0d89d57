package asciidoc

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strconv"
	"strings"
)

// AttrTester answers whether a document attribute is defined, for the
// conditional ifdef/ifndef overlay and for the include-target attribute
// substitution the Reader performs on the fly.
type AttrTester interface {
	Defined(name string) bool
	Get(name string) (string, bool)
	Substitute(line string) (string, bool) // false means "drop this line"
}

// frame holds one level of the include stack: a single input file together
// with its own unbounded pushback buffer and line counter, mirroring the
// original tool's Reader1 "next" buffer per nested reader.
type frame struct {
	name    string
	br      *bufio.Reader
	closer  io.Closer
	lineno  int
	pending []Cursor // unbounded pushback, most-recently-unread last
	tabSize int
	maxDepth int
	curDepth int
}

// Reader is the layered, line-oriented input stream described in §4.1: an
// unbounded pushback buffer, tab expansion, right-trimming, include-file
// stacking, conditional ifdef/ifndef/endif exclusion, and eval:/sys:/sys2:
// system block macro evaluation.
//
// Grounded on the teacher's decoder.go Decoder (sticky-error line reading)
// and expander.go ExpandingDecoder (decoder-stack push/pop for includes,
// cycle detection), generalized to the original tool's Reader1+Reader
// algorithm.
type Reader struct {
	fsys  fs.FS
	stack []*frame

	safe     SafeRoot
	attrs    AttrTester
	reporter *Reporter

	tabSize         int
	defaultMaxDepth int

	// conditional-exclusion state (Reader.depth/skip/skipname/skipto in the
	// original).
	condDepth int
	skip      bool
	skipName  string
	skipTo    int

	include1Cache map[string]string

	cursor Cursor
	err    error
}

var (
	ifdefRe  = regexp.MustCompile(`^ifdef::([^\[]*)\[\]\s*$`)
	ifndefRe = regexp.MustCompile(`^ifndef::([^\[]*)\[\]\s*$`)
	endifRe  = regexp.MustCompile(`^endif::([^\[]*)\[\]\s*$`)
	includeRe = regexp.MustCompile(`^include(1)?::([^\[]+)\[(.*)\]\s*$`)
	evalLineRe = regexp.MustCompile(`^(eval|sys|sys2)::(.*)\[\]\s*$`)
)

// NewReader creates a Reader that resolves include targets and opens its
// initial file within fsys. attrs supplies attribute lookups (ifdef/ifndef)
// and substitution (include macro targets); reporter records warnings.
func NewReader(fsys fs.FS, safe SafeRoot, attrs AttrTester, reporter *Reporter) *Reader {
	return &Reader{
		fsys:            fsys,
		safe:            safe,
		attrs:           attrs,
		reporter:        reporter,
		tabSize:         8,
		defaultMaxDepth: 5,
		skipTo:          -1,
		include1Cache:   map[string]string{},
	}
}

// Open switches the reader to a new top-level input file. path == "-" (or
// the sentinel the caller passes for stdin) must instead use OpenReader.
func (r *Reader) Open(path string) error {
	f, err := r.fsys.Open(path)
	if err != nil {
		return err
	}
	return r.pushFrame(path, f)
}

// OpenReader switches the reader to read from an already-open stream (used
// for the stdin sentinel).
func (r *Reader) OpenReader(name string, rc io.ReadCloser) error {
	return r.pushFrame(name, rc)
}

func (r *Reader) pushFrame(name string, rc io.Reader) error {
	closer, _ := rc.(io.Closer)
	fr := &frame{
		name:     name,
		br:       bufio.NewReader(rc),
		closer:   closer,
		tabSize:  r.tabSize,
		maxDepth: r.defaultMaxDepth,
	}
	r.stack = append(r.stack, fr)
	// Prefill buffer by reading the first line and then pushing it back, as
	// the original tool's Reader1.open does.
	if cur, ok := r.rawNext(); ok {
		r.rawUnread(cur)
	}
	return nil
}

// rawNext returns the next physical line from the top-of-stack file, tab
// expanded and right-trimmed, popping exhausted include frames as it goes.
// It performs no include/conditional/system-macro processing.
func (r *Reader) rawNext() (Cursor, bool) {
	for len(r.stack) > 0 {
		fr := r.stack[len(r.stack)-1]
		if n := len(fr.pending); n > 0 {
			cur := fr.pending[n-1]
			fr.pending = fr.pending[:n-1]
			return cur, true
		}
		line, err := fr.br.ReadString('\n')
		if line == "" && err != nil {
			if fr.closer != nil {
				fr.closer.Close()
			}
			r.stack = r.stack[:len(r.stack)-1]
			continue
		}
		fr.lineno++
		line = strings.TrimRight(line, "\n")
		line = strings.TrimRight(line, "\r")
		if fr.tabSize > 0 {
			line = expandTabs(line, fr.tabSize)
		}
		line = strings.TrimRight(line, " \t")
		return Cursor{File: fr.name, Line: fr.lineno, Text: line}, true
	}
	return Cursor{}, false
}

func (r *Reader) rawUnread(cur Cursor) {
	if len(r.stack) == 0 {
		return
	}
	fr := r.stack[len(r.stack)-1]
	fr.pending = append(fr.pending, cur)
}

func expandTabs(s string, tabSize int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, ch := range s {
		if ch == '\t' {
			spaces := tabSize - (col % tabSize)
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		} else {
			b.WriteRune(ch)
			col++
		}
	}
	return b.String()
}

// readSuper performs include and include1 expansion on top of the raw line
// stream, mirroring Reader1.read(skip). Conditional macros are still
// visible to the caller here; Reader.Read strips them.
func (r *Reader) readSuper(skip bool) (Cursor, bool) {
	cur, ok := r.rawNext()
	if !ok {
		if r.skip {
			r.err = fmt.Errorf("missing endif::%s[]", r.skipName)
		}
		return Cursor{}, false
	}

	m := includeRe.FindStringSubmatch(cur.Text)
	if m == nil || skip {
		return cur, true
	}

	isInclude1 := m[1] == "1"
	target := m[2]
	attrlist := m[3]

	topFrame := r.stack[len(r.stack)-1]
	if topFrame.curDepth >= topFrame.maxDepth {
		// Depth exceeded: degrade to emitting the unsubstituted line, per
		// scenario 6 — no crash, no recursion.
		return cur, true
	}

	substituted, keep := r.attrs.Substitute(target)
	if !keep {
		return r.readSuper(skip)
	}
	if substituted == "" {
		return r.readSuper(skip)
	}

	resolved := r.safe.resolve(substituted)
	if !r.safe.isSafePath(resolved) {
		if r.reporter != nil {
			r.reporter.Errorf(cur, "unsafe include target: %s", substituted)
		}
		return r.readSuper(skip)
	}

	attrs := map[string]string{}
	parseAttributes(attrlist, attrs)

	if isInclude1 {
		data, err := readAllFile(r.fsys, resolved)
		if err != nil {
			if r.reporter != nil {
				r.reporter.Warningf(cur, "include1 failed to open %s: %v", resolved, err)
			}
			return r.readSuper(skip)
		}
		r.include1Cache[resolved] = data
		return Cursor{File: cur.File, Line: cur.Line, Text: fmt.Sprintf("{include1:%s}", resolved)}, true
	}

	f, err := r.fsys.Open(resolved)
	if err != nil {
		if r.reporter != nil {
			r.reporter.Warningf(cur, "include failed to open %s: %v", resolved, err)
		}
		return r.readSuper(skip)
	}

	childTabSize := topFrame.tabSize
	if v, ok := attrs["tabsize"]; ok {
		childTabSize = atoiDefault(v, childTabSize)
	}
	childMaxDepth := topFrame.maxDepth
	if v, ok := attrs["depth"]; ok {
		childMaxDepth = topFrame.curDepth + atoiDefault(v, 1)
	}

	closer, _ := f.(io.Closer)
	child := &frame{
		name:     resolved,
		br:       bufio.NewReader(f),
		closer:   closer,
		tabSize:  childTabSize,
		maxDepth: childMaxDepth,
		// curDepth threads the total nesting depth through to the child so a
		// self-including cycle is bounded even though each frame in the
		// cycle only ever performs one include itself (§5 "no crash",
		// §8 scenario 6).
		curDepth: topFrame.curDepth + 1,
	}
	r.stack = append(r.stack, child)
	topFrame.curDepth++
	if cur2, ok := r.rawNext(); ok {
		r.rawUnread(cur2)
	}

	return r.readSuper(skip)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func readAllFile(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	var b strings.Builder
	br := bufio.NewReader(f)
	for {
		line, err := br.ReadString('\n')
		b.WriteString(strings.TrimRight(line, "\n\r"))
		b.WriteByte('\n')
		if err != nil {
			break
		}
	}
	return b.String(), nil
}

// Include1 retrieves previously cached content from include1:: processing,
// for the {include1:target} system attribute (§4.1, §4.4).
func (r *Reader) Include1(target string) (string, bool) {
	s, ok := r.include1Cache[target]
	return s, ok
}

// Read returns the next logical line: includes expanded, conditional blocks
// elided, eval:/sys:/sys2: system macros evaluated in place. Returns false
// at end of input.
func (r *Reader) Read() (Cursor, bool) {
	cur, ok := r.readSuper(r.skip)
	if !ok {
		return Cursor{}, false
	}

	for r.skip {
		if m := condMatch(cur.Text); m != nil {
			if m.name == "endif" {
				r.condDepth--
				if r.condDepth < 0 {
					r.err = fmt.Errorf("mismatched macro: %s", cur.Text)
					return Cursor{}, false
				}
				if r.condDepth == r.skipTo {
					r.skip = false
					if m.target != "" && r.skipName != m.target {
						r.err = fmt.Errorf("mismatched macro: %s", cur.Text)
						return Cursor{}, false
					}
				}
			} else {
				r.condDepth++
			}
		}
		cur, ok = r.readSuper(r.skip)
		if !ok {
			return Cursor{}, false
		}
	}

	if m := condMatch(cur.Text); m != nil {
		if m.name == "endif" {
			r.condDepth--
		} else {
			if m.target == "" {
				r.err = fmt.Errorf("missing macro target: %s", cur.Text)
				return Cursor{}, false
			}
			defined := r.attrs.Defined(m.target)
			if m.name == "ifdef" {
				r.skip = !defined
			} else {
				r.skip = defined
			}
			if r.skip {
				r.skipTo = r.condDepth
				r.skipName = m.target
			}
			r.condDepth++
		}
		return r.Read()
	}

	if m := evalLineRe.FindStringSubmatch(cur.Text); m != nil {
		action, cmd := m[1], m[2]
		out, ok := r.runSystemAction(action, cmd)
		if ok {
			cur.Text = out
		}
	}

	r.cursor = cur
	return cur, true
}

type condToken struct {
	name   string
	target string
}

func condMatch(line string) *condToken {
	if m := ifdefRe.FindStringSubmatch(line); m != nil {
		return &condToken{name: "ifdef", target: strings.TrimSpace(m[1])}
	}
	if m := ifndefRe.FindStringSubmatch(line); m != nil {
		return &condToken{name: "ifndef", target: strings.TrimSpace(m[1])}
	}
	if m := endifRe.FindStringSubmatch(line); m != nil {
		return &condToken{name: "endif", target: strings.TrimSpace(m[1])}
	}
	return nil
}

// runSystemAction executes an eval:/sys:/sys2: block macro, returning its
// replacement text. See §4.4 for the corresponding inline system attribute.
func (r *Reader) runSystemAction(action, cmd string) (string, bool) {
	switch action {
	case "eval":
		v, err := EvalExpr(cmd, r.attrs)
		if err != nil {
			if r.reporter != nil {
				r.reporter.Warningf(r.cursor, "eval failed: %v", err)
			}
			return "", false
		}
		return v, true
	case "sys", "sys2":
		if r.safe.Safe {
			if r.reporter != nil {
				r.reporter.Errorf(r.cursor, "%s not permitted in safe mode", action)
			}
			return "", false
		}
		out, ok, err := runShell(r.safe.Root, cmd, "", action == "sys2")
		if err != nil {
			if r.reporter != nil {
				r.reporter.Warningf(r.cursor, "%s failed: %v", action, err)
			}
			return "", false
		}
		if !ok && r.reporter != nil {
			r.reporter.Warningf(r.cursor, "%s command exited non-zero: %s", action, cmd)
		}
		return strings.TrimRight(out, "\n"), true
	}
	return "", false
}

// ReadNext peeks at the next logical line without advancing the cursor.
func (r *Reader) ReadNext() (Cursor, bool) {
	saved := r.cursor
	cur, ok := r.Read()
	if ok {
		r.rawUnread(cur)
		r.cursor = saved
	}
	return cur, ok
}

// ReadAhead returns up to n logical lines without advancing the cursor.
func (r *Reader) ReadAhead(n int) []Cursor {
	saved := r.cursor
	var result []Cursor
	var putback []Cursor
	for i := 0; i < n && !r.EOF(); i++ {
		cur, ok := r.Read()
		if !ok {
			break
		}
		result = append(result, cur)
		putback = append(putback, cur)
	}
	for i := len(putback) - 1; i >= 0; i-- {
		r.rawUnread(putback[i])
	}
	r.cursor = saved
	return result
}

// EOF reports whether all input has been consumed.
func (r *Reader) EOF() bool {
	_, ok := r.ReadNext()
	return !ok
}

// SkipBlankLines advances past any run of blank lines.
func (r *Reader) SkipBlankLines() {
	r.ReadUntil(`\s*\S+`, false)
}

// ReadUntil reads and returns lines up to (but not including) the first line
// whose text matches pattern. If sameFile, the terminating match must occur
// in the file that was current when ReadUntil was called (so a delimiter
// inside an included file cannot close an outer block, per §4.6.7).
func (r *Reader) ReadUntil(pattern string, sameFile bool) []string {
	re := regexp.MustCompile(pattern)
	var fname string
	if sameFile {
		fname = r.cursor.File
	}
	var result []string
	for !r.EOF() {
		saved := r.cursor
		cur, ok := r.Read()
		if !ok {
			break
		}
		if (!sameFile || fname == cur.File) && re.MatchString(cur.Text) {
			r.rawUnread(cur)
			r.cursor = saved
			break
		}
		result = append(result, cur.Text)
	}
	return result
}

// Cursor returns the position of the line most recently returned by Read.
func (r *Reader) Cursor() Cursor {
	return r.cursor
}

// Err returns any fatal error accumulated (e.g. missing endif).
func (r *Reader) Err() error {
	return r.err
}
