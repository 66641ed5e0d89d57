package asciidoc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// sectionFrame is one open entry on the section nesting stack: the level it
// was opened at and the closing tag to emit when a same-or-lower-level
// title (or end of input) closes it (§4.6.4 "section nesting").
type sectionFrame struct {
	level int
	etag  string
}

// Document is the top-level driver: it owns the header (title, attributes),
// the section-numbering counters, and the open-section stack, and drives
// the Reader/Lexer/Evaluator/Writer pipeline for one translation (§3
// "Document", §4.6).
//
// Grounded on the original tool's Document class (header parsing, stack of
// open tags) and the asciidoc() top-level driver function, reshaped as an
// explicit struct instead of a module singleton (see DESIGN.md "Global
// state").
type Document struct {
	Config   *Config
	Eval     *Evaluator
	Reader   *Reader
	Writer   *Writer
	Reporter *Reporter

	Title   string
	Author  string
	Revinfo string

	lexer        *Lexer
	counters     [5]int
	stack        []sectionFrame
	ids          map[string]int
	lastCallouts []string
}

// NewDocument wires the pipeline together. attrs must already carry the
// implicit and [attributes]-section seeding (§4.3); cfg must already be
// validated.
func NewDocument(cfg *Config, r *Reader, w *Writer, reporter *Reporter) *Document {
	ev := NewEvaluator(cfg, cfg.Attributes, r.safe, reporter)
	d := &Document{
		Config:   cfg,
		Eval:     ev,
		Reader:   r,
		Writer:   w,
		Reporter: reporter,
		ids:      map[string]int{},
	}
	d.lexer = NewLexer(r, cfg, ev)
	return d
}

// Translate runs the full document: header, then body blocks until EOF,
// closing every open section, matching the original tool's asciidoc()
// sequence of parse_header/Lex.parse/Document.translate.
func (d *Document) Translate() error {
	d.parseHeader()
	d.emitTemplate("header")
	for {
		kind := d.lexer.Classify()
		if kind == KindEOF {
			break
		}
		if err := d.translateBlock(kind); err != nil {
			return err
		}
	}
	d.closeSections(0)
	d.emitTemplate("footer")
	return d.Writer.Flush()
}

// emitTemplate writes a [header]/[footer] configuration template, attribute-
// substituting each line against the document attributes (doctitle, author,
// etc. are seeded by parseHeader/consumeHeaderTail); a line that drops (an
// unresolved reference) is omitted, matching the normal attribute-reference
// drop rule (§4.4 step 4, §4.7 steps 4 and 6). Absent sections emit nothing,
// so documents without a configured header/footer behave exactly as before.
func (d *Document) emitTemplate(name string) {
	for _, l := range d.Config.Sections[name] {
		if v, ok := d.Eval.SubstituteAttrsWith(l, nil); ok {
			d.Writer.WriteLine(v)
		}
	}
}

// parseHeader consumes the optional document title (one-line or
// underlined), author line, and revision line preceding the first
// attribute entry or body block (§4.6.4 "document header").
func (d *Document) parseHeader() {
	ahead := d.Reader.ReadAhead(2)
	if len(ahead) == 0 {
		return
	}
	if t, ok := MatchOneLineTitle(ahead[0].Text); ok && t.Level == 0 {
		d.Reader.Read()
		d.Title = t.Text
		d.Eval.Attrs.Set("doctitle", d.Title)
		d.consumeHeaderTail()
		return
	}
	if len(ahead) == 2 {
		if t, ok := MatchTwoLineTitle(ahead[0].Text, ahead[1].Text, &d.Config.Titles); ok && t.Level == 0 {
			d.Reader.Read()
			d.Reader.Read()
			d.Title = t.Text
			d.Eval.Attrs.Set("doctitle", d.Title)
			d.consumeHeaderTail()
		}
	}
}

// authorLineRe parses the document header's author line, "First [Middle]
// Last [<email>]" (§4.6.4, §4.7 step 3).
var authorLineRe = regexp.MustCompile(`^\s*([^\s<]+)(?:\s+([^\s<]+))?(?:\s+([^\s<]+))?(?:\s*<([^>]+)>)?\s*$`)

// revisionIdRe matches an RCS-style `$Id: file,v revision date author $`
// revision line; revisionCommaRe matches the simpler "revision, date" form
// (§4.6.4, §4.7 step 3).
var (
	revisionIdRe    = regexp.MustCompile(`^\$Id:\s*\S+\s+(\S+)\s+(\S+)`)
	revisionCommaRe = regexp.MustCompile(`^([^\s,]+)\s*,\s*(.+)$`)
)

// applyAuthorLine splits an author line into firstname/middlename/lastname/
// email and sets the corresponding document attributes, matching the
// original tool's Document.parse_author (§4.7 step 3).
func (d *Document) applyAuthorLine(line string) {
	m := authorLineRe.FindStringSubmatch(line)
	if m == nil {
		d.Eval.Attrs.Set("author", line)
		return
	}
	first, middle, last, email := m[1], m[2], m[3], m[4]
	if last == "" {
		last, middle = middle, ""
	}
	names := []string{first}
	initials := []string{}
	if first != "" {
		initials = append(initials, first[:1])
	}
	if middle != "" {
		names = append(names, middle)
		initials = append(initials, middle[:1])
	}
	if last != "" {
		names = append(names, last)
		initials = append(initials, last[:1])
	}
	full := strings.Join(names, " ")
	d.Author = full
	d.Eval.Attrs.Set("author", full)
	d.Eval.Attrs.Set("firstname", first)
	if middle != "" {
		d.Eval.Attrs.Set("middlename", middle)
	}
	if last != "" {
		d.Eval.Attrs.Set("lastname", last)
	}
	if email != "" {
		d.Eval.Attrs.Set("email", email)
	}
	d.Eval.Attrs.Set("authorinitials", strings.Join(initials, ""))
}

// applyRevisionLine parses a revision line into revnumber/revdate (and, for
// the RCS form, revremark-free author/date fields), matching the original
// tool's Document.parse_revision (§4.7 step 3).
func (d *Document) applyRevisionLine(line string) {
	d.Revinfo = line
	if m := revisionIdRe.FindStringSubmatch(line); m != nil {
		d.Eval.Attrs.Set("revnumber", m[1])
		d.Eval.Attrs.Set("revdate", m[2])
		return
	}
	if m := revisionCommaRe.FindStringSubmatch(line); m != nil {
		d.Eval.Attrs.Set("revnumber", strings.TrimSpace(m[1]))
		d.Eval.Attrs.Set("revdate", strings.TrimSpace(m[2]))
		return
	}
	d.Eval.Attrs.Set("revdate", strings.TrimSpace(line))
}

// consumeHeaderTail reads the author and revision lines immediately
// following a recognized document title, and any attribute entries
// interleaved among them, stopping at the first blank line (§4.6.4).
func (d *Document) consumeHeaderTail() {
	first := true
	for {
		cur, ok := d.Reader.ReadNext()
		if !ok || isBlank(cur.Text) {
			if ok {
				d.Reader.Read()
			}
			return
		}
		if e, ok := MatchAttrEntry(cur.Text); ok {
			d.Reader.Read()
			ApplyAttrEntry(d.Eval.Attrs, e)
			continue
		}
		d.Reader.Read()
		if first {
			d.applyAuthorLine(strings.TrimSpace(cur.Text))
			first = false
		} else {
			d.applyRevisionLine(strings.TrimSpace(cur.Text))
		}
	}
}

func (d *Document) translateBlock(kind BlockKind) error {
	lex := d.lexer
	switch kind {
	case KindTitle:
		return d.translateTitle(lex)
	case KindDelimitedBlock:
		return d.translateDelimited(lex)
	case KindList:
		return d.translateList(lex)
	case KindTable:
		return d.translateTable(lex)
	default:
		return d.translateParagraph(lex)
	}
}

func (d *Document) translateTitle(lex *Lexer) error {
	cur, _ := d.Reader.Read()
	var title Title
	if t, ok := MatchOneLineTitle(cur.Text); ok {
		title = t
	} else {
		next, _ := d.Reader.Read()
		title, _ = MatchTwoLineTitle(cur.Text, next.Text, &d.Config.Titles)
	}
	pendingAttrs := lex.TakePendingAttrs()
	d.closeSections(title.Level)
	id := synthesizeID(title.Text)
	if n := d.ids[id]; n > 0 {
		id = fmt.Sprintf("%s_%d", id, n+1)
	}
	d.ids[synthesizeID(title.Text)]++
	d.counters[title.Level]++
	for i := title.Level + 1; i < len(d.counters); i++ {
		d.counters[i] = 0
	}
	number := d.sectionNumber(title.Level)
	overlay := map[string]string{"title": title.Text, "id": id, "sectnum": number}
	for k, v := range pendingAttrs {
		overlay[k] = v
	}
	tagName := fmt.Sprintf("sect%d", title.Level)
	tag, ok := d.Config.Tags[tagName]
	if !ok {
		d.Writer.Write(title.Text)
		return nil
	}
	stag, etag := tag.Expand(d.Eval, overlay)
	if stag != "" {
		d.Writer.WriteLine(stag)
	}
	d.stack = append(d.stack, sectionFrame{level: title.Level, etag: etag})
	return nil
}

func (d *Document) sectionNumber(level int) string {
	var parts []string
	for i := 1; i <= level; i++ {
		parts = append(parts, fmt.Sprintf("%d", d.counters[i]))
	}
	if level == 0 {
		return ""
	}
	return strings.Join(parts, ".")
}

func (d *Document) closeSections(uptoLevel int) {
	for len(d.stack) > 0 && d.stack[len(d.stack)-1].level >= uptoLevel {
		top := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		if top.etag != "" {
			d.Writer.WriteLine(top.etag)
		}
	}
}

func (d *Document) translateDelimited(lex *Lexer) error {
	cur, _ := d.Reader.Read()
	def, _ := RecognizeDelimiter(d.Config, cur.Text)
	attrs := lex.TakePendingAttrs()
	title := lex.TakePendingTitle()
	body := d.Reader.ReadUntil(def.Delim.String(), true)
	d.Reader.Read() // consume closing delimiter
	if def.Options["skip"] {
		// A skip-optioned block is discarded silently and the lexer re-runs
		// on whatever follows it (§4.6.6, §4.6.7).
		return nil
	}
	blk := &DelimitedBlock{Def: def, Body: body, Attrs: attrs, Title: title}
	blk.Render(d.Eval, d.Writer)
	if def != nil && containsSub(def.Subs, "callouts") {
		// Snapshot the marks this listing registered so the callout list
		// that (by convention) immediately follows can be correlated
		// against them, then reset for the next listing (§3 "Callout").
		d.lastCallouts = d.Eval.Callouts.Marks()
		d.Eval.Callouts.Reset()
	}
	return nil
}

func containsSub(subs []string, name string) bool {
	for _, s := range subs {
		if s == name {
			return true
		}
	}
	return false
}

func (d *Document) translateParagraph(lex *Lexer) error {
	cur, _ := d.Reader.Read()
	attrs := lex.TakePendingAttrs()
	def, attrs := RecognizeParagraph(d.Config, cur.Text, attrs)
	lines := []string{cur.Text}
	for {
		next, ok := d.Reader.ReadNext()
		if !ok || isBlank(next.Text) {
			break
		}
		if lex2 := (&Lexer{Reader: d.Reader, Config: d.Config, Eval: d.Eval}); lex2.classifyLine(next.Text) != KindParagraph {
			break
		}
		d.Reader.Read()
		lines = append(lines, next.Text)
	}
	p := &Paragraph{Def: def, Lines: lines, Attrs: attrs}
	p.Render(d.Eval, d.Writer)
	return nil
}

func (d *Document) translateList(lex *Lexer) error {
	first, _, _ := RecognizeListItem(d.Config, mustPeekText(d.Reader))
	list := &List{Def: first}
	for {
		cur, ok := d.Reader.ReadNext()
		if !ok || isBlank(cur.Text) {
			break
		}
		def, item, matched := RecognizeListItem(d.Config, cur.Text)
		if !matched || def.Name != first.Name {
			break
		}
		d.Reader.Read()
		for {
			next, ok := d.Reader.ReadNext()
			if !ok || isBlank(next.Text) {
				break
			}
			if _, _, isItem := RecognizeListItem(d.Config, next.Text); isItem {
				break
			}
			d.Reader.Read()
			item.Lines = append(item.Lines, next.Text)
		}
		list.Items = append(list.Items, item)
	}
	if list.Def != nil {
		switch list.Def.ListType {
		case "callout":
			d.checkCalloutCorrelation(list)
		case "numbered":
			d.checkNumberedSequence(list)
		}
	}
	list.Render(d.Eval, d.Writer)
	return nil
}

// checkCalloutCorrelation warns about any callout-list item whose index is
// not among the marks the preceding listing block registered, enforcing the
// correlation invariant comap[i] subset-of observed-callout-indices (§3
// "Callout", §8 "callout correlation").
func (d *Document) checkCalloutCorrelation(list *List) {
	for _, item := range list.Items {
		n, err := strconv.Atoi(strings.TrimSpace(item.Label))
		if err != nil {
			continue
		}
		if n < 1 || n > len(d.lastCallouts) {
			d.Reporter.Warningf(d.Reader.Cursor(), "callout <%d> not found in preceding listing", n)
		}
	}
}

// checkNumberedSequence warns when a numbered-list item's number breaks the
// expected 1, 2, 3, ... sequence (§8 Scenario 5).
func (d *Document) checkNumberedSequence(list *List) {
	expected := 1
	for _, item := range list.Items {
		n, err := strconv.Atoi(strings.TrimSpace(item.Label))
		if err != nil {
			expected++
			continue
		}
		if n != expected {
			d.Reporter.Warningf(d.Reader.Cursor(), "list item %d out of sequence", n)
		}
		expected = n + 1
	}
}

func mustPeekText(r *Reader) string {
	cur, _ := r.ReadNext()
	return cur.Text
}

func (d *Document) translateTable(lex *Lexer) error {
	d.Reader.Read() // opening |===
	attrs := lex.TakePendingAttrs()
	title := lex.TakePendingTitle()
	style, _ := StyleOf(attrs)
	def, ok := d.Config.TableDefs[style]
	if !ok {
		def, ok = d.Config.TableDefs["default"]
	}
	if !ok {
		for _, any := range d.Config.TableDefs {
			def = any
			break
		}
	}
	body := d.Reader.ReadUntil(`^\|===\s*$`, true)
	d.Reader.Read() // closing |===
	format := "psv"
	if def != nil {
		format = def.Format
	}
	rows := ParseRows(body, format)
	t := &Table{Def: def, Cols: ParseCols(attrs["cols"]), Rows: rows, Attrs: attrs, Title: title}
	if _, hasHeader := attrs["header-option"]; hasHeader && len(rows) > 0 {
		t.HeadRow, t.Rows = rows[0], rows[1:]
	}
	if _, hasFooter := attrs["footer-option"]; hasFooter && len(t.Rows) > 0 {
		t.FootRow, t.Rows = t.Rows[len(t.Rows)-1], t.Rows[:len(t.Rows)-1]
	}
	t.Render(d.Eval, d.Writer)
	return nil
}
