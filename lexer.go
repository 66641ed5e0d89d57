package asciidoc

// BlockKind classifies the next recognized block, in the priority order
// the original tool's Lex.next_block dispatch uses: attribute entries and
// lists are checked before titles, titles before delimited blocks, and
// paragraphs are the fallback (§4.6).
type BlockKind int

const (
	KindEOF BlockKind = iota
	KindAttrEntry
	KindAttrList
	KindBlockTitle
	KindTitle
	KindDelimitedBlock
	KindList
	KindTable
	KindParagraph
)

// Lexer peeks the Reader and classifies the next logical line, caching the
// classification against the cursor it was computed at so that repeated
// EOF()/ReadNext() probes inside one recognizer don't redo the work — the
// original tool keys this same cache off (filename, linenumber).
//
// Grounded on the original tool's Lex.next_block()/Lex.read() dispatch
// loop, generalized into an explicit struct holding the Reader, Config and
// Evaluator it dispatches against instead of module-level state.
type Lexer struct {
	Reader *Reader
	Config *Config
	Eval   *Evaluator

	pendingAttrs map[string]string
	pendingTitle string

	cacheCursor Cursor
	cacheKind   BlockKind
	cacheValid  bool
}

// NewLexer builds a Lexer over r, dispatching recognizers configured in cfg
// and substituting/evaluating through ev.
func NewLexer(r *Reader, cfg *Config, ev *Evaluator) *Lexer {
	return &Lexer{Reader: r, Config: cfg, Eval: ev}
}

// Classify peeks the next logical line and returns its BlockKind without
// consuming it, consuming and absorbing AttributeEntry/AttributeList/
// BlockTitle lines as it goes since those attach to, rather than being,
// the following block (§4.6.1-4.6.3).
func (l *Lexer) Classify() BlockKind {
	for {
		cur, ok := l.Reader.ReadNext()
		if !ok {
			return KindEOF
		}
		if l.cacheValid && l.cacheCursor == cur {
			return l.cacheKind
		}
		if isBlank(cur.Text) {
			l.Reader.Read()
			continue
		}
		if e, ok := MatchAttrEntry(cur.Text); ok {
			l.Reader.Read()
			ApplyAttrEntry(l.Eval.Attrs, e)
			continue
		}
		if attrs, ok := MatchAttrList(cur.Text); ok {
			l.Reader.Read()
			l.pendingAttrs = attrs
			continue
		}
		if title, ok := MatchBlockTitle(cur.Text); ok {
			l.Reader.Read()
			l.pendingTitle = title
			continue
		}
		kind := l.classifyLine(cur.Text)
		l.cacheCursor = cur
		l.cacheKind = kind
		l.cacheValid = true
		return kind
	}
}

func (l *Lexer) classifyLine(text string) BlockKind {
	if _, ok := MatchOneLineTitle(text); ok {
		return KindTitle
	}
	if text == tableDelim {
		return KindTable
	}
	if _, ok := RecognizeDelimiter(l.Config, text); ok {
		return KindDelimitedBlock
	}
	if _, _, ok := RecognizeListItem(l.Config, text); ok {
		return KindList
	}
	if ahead := l.Reader.ReadAhead(2); len(ahead) == 2 {
		if _, ok := MatchTwoLineTitle(ahead[0].Text, ahead[1].Text, &l.Config.Titles); ok {
			return KindTitle
		}
	}
	return KindParagraph
}

// TakePendingAttrs returns and clears the attribute list accumulated for
// the next block.
func (l *Lexer) TakePendingAttrs() map[string]string {
	a := l.pendingAttrs
	l.pendingAttrs = nil
	l.invalidate()
	return a
}

// TakePendingTitle returns and clears the block title accumulated for the
// next block.
func (l *Lexer) TakePendingTitle() string {
	t := l.pendingTitle
	l.pendingTitle = ""
	l.invalidate()
	return t
}

func (l *Lexer) invalidate() {
	l.cacheValid = false
}
