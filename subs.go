package asciidoc

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Evaluator runs the ordered substitution passes of §4.4 over a line or
// block of text: specialcharacters, quotes, specialwords, replacements,
// replacements2, attributes, macros, callouts. It also implements
// AttrTester so the Reader can use it directly for ifdef/ifndef lookups
// and on-the-fly include-target substitution.
//
// Grounded on the original tool's attribute/substitution machinery
// (subs_attrs, subs_quotes, subs_specialwords, subs_replacements,
// subs_specialchars); reshaped as a struct bound to one Config/AttrMap pair
// instead of free functions over module globals.
type Evaluator struct {
	Config    *Config
	Attrs     *AttrMap
	Safe      SafeRoot
	Reporter  *Reporter
	Callouts  *CalloutMap
	Macros    []MacroDef

	passthroughs []string
}

// NewEvaluator builds an Evaluator bound to cfg/attrs.
func NewEvaluator(cfg *Config, attrs *AttrMap, safe SafeRoot, reporter *Reporter) *Evaluator {
	return &Evaluator{
		Config:   cfg,
		Attrs:    attrs,
		Safe:     safe,
		Reporter: reporter,
		Callouts: NewCalloutMap(),
		Macros:   cfg.Macros,
	}
}

func (e *Evaluator) Defined(name string) bool { return e.Attrs.Defined(name) }

func (e *Evaluator) Get(name string) (string, bool) { return e.Attrs.Get(name) }

// attrRefRe matches a `{name}`, `{name OP value}` conditional reference or a
// nested system attribute reference `{eval:...}`, `{sys:...}`, `{sys2:...}`,
// `{include:...}`, `{include1:...}` (§4.4 step 3). The grammar has no
// whitespace around OP: the operator is a character embedded in the token,
// e.g. `{x?yes}`.
var attrRefRe = regexp.MustCompile(`\{([^\s{}]+)\}`)

// attrOpChars are the conditional-reference operators recognized inside a
// `{name OP value}` token (§4.4 step 3).
const attrOpChars = "=?!#%@$"

// splitAttrRef splits a captured `{...}` token's inner text on the first
// operator character into (name, op, value); hasOp is false for a plain
// `{name}` simple reference.
func splitAttrRef(name string) (attrName, op, value string, hasOp bool) {
	if i := strings.IndexAny(name, attrOpChars); i >= 0 {
		return name[:i], string(name[i]), name[i+1:], true
	}
	return name, "", "", false
}

// Substitute performs the single-line attribute-reference pass used by the
// Reader for conditional targets and include-target expansion (§4.1). It
// returns ok=false when the line should be dropped entirely (an undefined
// simple reference with no conditional qualifier, §4.4 step 4).
func (e *Evaluator) Substitute(line string) (string, bool) {
	return e.SubstituteAttrsWith(line, nil)
}

// SubstituteAttrsWith substitutes `{name}` and `{name OP value}` references
// against a local overlay (typically a macro/tag's attribute list) merged
// over e.Attrs, as used by TagTemplate.Expand and macro tag expansion.
//
// The conditional operators (§4.4 step 3) are a ternary on whether name is
// defined (lval is the attribute's own value, rval is the text following
// OP): `=` -> lval/rval, `?` -> rval/"", `!` -> ""/rval, `#` -> lval/drop,
// `%` -> drop/rval. `@`/`$` instead match a regex against lval: rval is
// `pattern:v1[:v2]`; `@` yields v1 on match else v2-or-"", `$` yields v1 on
// match else v2-or-drop; an undefined lval always drops the line for both.
func (e *Evaluator) SubstituteAttrsWith(line string, overlay map[string]string) (string, bool) {
	dropped := false
	out := attrRefRe.ReplaceAllStringFunc(line, func(m string) string {
		if dropped {
			return m
		}
		name := m[1 : len(m)-1]
		if repl, ok := e.resolveSystemAttr(name); ok {
			return repl
		}
		attrName, op, value, hasOp := splitAttrRef(name)
		if !hasOp {
			val, def := e.lookup(attrName, overlay)
			if !def {
				dropped = true
				return ""
			}
			return val
		}
		lval, def := e.lookup(attrName, overlay)
		switch op {
		case "=":
			if def {
				return lval
			}
			return value
		case "?":
			if def {
				return value
			}
			return ""
		case "!":
			if def {
				return ""
			}
			return value
		case "#":
			if def {
				return lval
			}
			dropped = true
			return ""
		case "%":
			if def {
				dropped = true
				return ""
			}
			return value
		case "@", "$":
			if !def {
				dropped = true
				return ""
			}
			v, drop := e.matchConditional(op, lval, value)
			if drop {
				dropped = true
				return ""
			}
			return v
		}
		return m
	})
	if dropped {
		return "", false
	}
	return out, true
}

// matchConditional implements the `@`/`$` regex-conditional operators: value
// is `pattern:v1[:v2]`; a match yields v1, a non-match yields v2 (or "" for
// `@`, or drops the line for `$` when v2 is absent).
func (e *Evaluator) matchConditional(op, lval, value string) (string, bool) {
	parts := strings.SplitN(value, ":", 3)
	pattern := parts[0]
	v1, v2, hasV2 := "", "", false
	if len(parts) > 1 {
		v1 = parts[1]
	}
	if len(parts) > 2 {
		v2, hasV2 = parts[2], true
	}
	matched, err := regexp.MatchString(pattern, lval)
	if err != nil {
		e.warnf("invalid attribute conditional pattern: %s", pattern)
		return "", false
	}
	if matched {
		return v1, false
	}
	if op == "$" && !hasV2 {
		return "", true
	}
	return v2, false
}

func (e *Evaluator) lookup(name string, overlay map[string]string) (string, bool) {
	if overlay != nil {
		if v, ok := overlay[name]; ok {
			return v, true
		}
	}
	return e.Attrs.Get(name)
}

func (e *Evaluator) resolveSystemAttr(name string) (string, bool) {
	switch {
	case strings.HasPrefix(name, "eval:"):
		v, err := EvalExpr(name[len("eval:"):], e)
		if err != nil {
			e.warnf("eval: %v", err)
			return "", true
		}
		if v == "True" || v == "False" {
			return "", true
		}
		return v, true
	case strings.HasPrefix(name, "sys:"), strings.HasPrefix(name, "sys2:"):
		withStderr := strings.HasPrefix(name, "sys2:")
		cmd := strings.TrimPrefix(strings.TrimPrefix(name, "sys2:"), "sys:")
		if e.Safe.Safe {
			e.warnf("sys not permitted in safe mode")
			return "", true
		}
		out, ok, err := runShell(e.Safe.Root, cmd, "", withStderr)
		if err != nil || !ok {
			if err != nil {
				e.warnf("sys failed: %v", err)
			}
			return "", true
		}
		return strings.TrimRight(out, "\n"), true
	}
	return "", false
}

func (e *Evaluator) warnf(format string, args ...any) {
	if e.Reporter != nil {
		e.Reporter.Warningf(Cursor{}, format, args...)
	}
}

// Subs runs content (joined on "\n" if it is multi-line) through the named
// passes in order and returns the result split back into lines, matching
// the original tool's Lex.subs_lines/paragraph.subs signature used by
// Writer.WriteTag and the block recognizers.
func (e *Evaluator) Subs(content string, passes []string) []string {
	hasMacros := false
	for _, pass := range passes {
		if pass == "macros" {
			hasMacros = true
			break
		}
	}
	if hasMacros {
		content = e.extractPassthroughMacros(content)
	}
	lines := strings.Split(content, "\n")
	for _, pass := range passes {
		switch pass {
		case "specialcharacters":
			lines = e.mapLines(lines, e.subsSpecialChars)
		case "quotes":
			lines = e.mapLines(lines, e.subsQuotes)
		case "specialwords":
			lines = e.mapLines(lines, e.subsSpecialWords)
		case "replacements":
			lines = e.mapLines(lines, func(l string) string { return e.subsReplacements(l, e.Config.Replacements) })
		case "replacements2":
			lines = e.mapLines(lines, func(l string) string { return e.subsReplacements(l, e.Config.Replacements2) })
		case "attributes":
			lines = e.subsAttributesLines(lines)
		case "macros":
			lines = e.mapLines(lines, e.subsMacros)
		case "callouts":
			lines = e.mapLines(lines, e.subsCallouts)
		}
	}
	if hasMacros && len(e.passthroughs) > 0 {
		lines = e.mapLines(lines, e.RestorePassthroughs)
	}
	return lines
}

func (e *Evaluator) mapLines(lines []string, f func(string) string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = f(l)
	}
	return out
}

func (e *Evaluator) subsAttributesLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		if v, ok := e.Substitute(l); ok {
			out = append(out, v)
		}
	}
	return out
}

// subsSpecialChars replaces each configured special character with its
// [specialcharacters] substitute (§4.4, idempotent per the reverse map used
// by subsSpecialCharsReverse for round-tripping, §8).
func (e *Evaluator) subsSpecialChars(line string) string {
	if len(e.Config.SpecialChars) == 0 {
		return line
	}
	var b strings.Builder
	for _, r := range line {
		if repl, ok := e.Config.SpecialChars[string(r)]; ok {
			b.WriteString(repl)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// subsSpecialCharsReverse undoes subsSpecialChars; used only by tests that
// check the specialcharacters pass is a lossless encoding (§8).
func (e *Evaluator) subsSpecialCharsReverse(line string) string {
	keys := maps.Keys(e.Config.SpecialChars)
	slices.Sort(keys)
	out := line
	for _, k := range keys {
		out = strings.ReplaceAll(out, e.Config.SpecialChars[k], k)
	}
	return out
}

// subsQuotes applies every [quotes] delimiter pair as a tag substitution,
// longest-delimiter-first so that e.g. `**` is tried before `*` (§4.4). A
// backslash immediately before an opening delimiter escapes it: the
// backslash is dropped and the delimiter is left as literal text (§8
// Scenario 3).
func (e *Evaluator) subsQuotes(line string) string {
	defs := slices.Clone(e.Config.Quotes)
	slices.SortStableFunc(defs, func(a, b QuoteDef) int { return len(b.Left) - len(a.Left) })
	for _, q := range defs {
		tag, ok := e.Config.Tags[q.Tag]
		if !ok {
			continue
		}
		line = e.applyQuote(line, q, tag)
	}
	return line
}

func (e *Evaluator) applyQuote(line string, q QuoteDef, tag TagTemplate) string {
	if q.Left == "" {
		return line
	}
	var b strings.Builder
	i := 0
	for i < len(line) {
		if line[i] == '\\' && strings.HasPrefix(line[i+1:], q.Left) {
			b.WriteString(q.Left)
			i += 1 + len(q.Left)
			continue
		}
		if strings.HasPrefix(line[i:], q.Left) {
			close := strings.Index(line[i+len(q.Left):], q.Right)
			if close >= 0 {
				inner := line[i+len(q.Left) : i+len(q.Left)+close]
				if inner != "" || q.Unconstrained {
					stag, etag := tag.Start, tag.End
					b.WriteString(stag)
					b.WriteString(inner)
					b.WriteString(etag)
					i += len(q.Left) + close + len(q.Right)
					continue
				}
			}
		}
		b.WriteByte(line[i])
		i++
	}
	return b.String()
}

func (e *Evaluator) subsSpecialWords(line string) string {
	for _, def := range e.Config.SpecialWords {
		tag, ok := e.Config.Tags[def.Macro]
		if !ok {
			continue
		}
		for _, re := range def.Words {
			line = re.ReplaceAllStringFunc(line, func(m string) string {
				stag, etag := tag.Expand(e, map[string]string{"1": m})
				return stag + m + etag
			})
		}
	}
	return line
}

func (e *Evaluator) subsReplacements(line string, rules []ReplacementRule) string {
	for _, r := range rules {
		line = r.Pattern.ReplaceAllString(line, r.Replacement)
	}
	return line
}

func (e *Evaluator) subsMacros(line string) string {
	for _, m := range e.Macros {
		line = m.Apply(e, line)
	}
	return line
}

var calloutRe = regexp.MustCompile(`<(\d+|\.)>`)

func (e *Evaluator) subsCallouts(line string) string {
	return calloutRe.ReplaceAllStringFunc(line, func(m string) string {
		n := e.Callouts.Register(m[1 : len(m)-1])
		tag, ok := e.Config.Tags["callout"]
		if !ok {
			return m
		}
		stag, etag := tag.Expand(e, map[string]string{"1": fmt.Sprintf("%d", n)})
		return stag + etag
	})
}

// extractPassthroughMacros finds every match of a registered macro whose
// pattern declares a "passtext" capture group and replaces it with a
// `\x01N\x01` placeholder before any other pass runs, fully expanding the
// match through its own tag now so that later passes (quotes, specialwords,
// the generic macros pass, ...) never see — and cannot corrupt — its content
// (§4.4 "passthrough", §4.5). RestorePassthroughs splices the expansion back
// in once every other pass has completed, so `restore(extract(M)) = M` holds
// for the rendered form of M (§8 "Passthrough preservation").
func (e *Evaluator) extractPassthroughMacros(content string) string {
	for _, m := range e.Macros {
		if !hasPasstextGroup(m.Pattern) {
			continue
		}
		content = m.Pattern.ReplaceAllStringFunc(content, func(match string) string {
			rendered := m.Apply(e, match)
			idx := len(e.passthroughs)
			e.passthroughs = append(e.passthroughs, rendered)
			return fmt.Sprintf("\x01%d\x01", idx)
		})
	}
	return content
}

func hasPasstextGroup(re *regexp.Regexp) bool {
	for _, n := range re.SubexpNames() {
		if n == "passtext" {
			return true
		}
	}
	return false
}

var passthroughPlaceholderRe = regexp.MustCompile("\x01(\\d+)\x01")

// RestorePassthroughs splices literal text stashed by extractPassthroughMacros
// back into line in place of its `\x01N\x01` placeholders.
func (e *Evaluator) RestorePassthroughs(line string) string {
	return passthroughPlaceholderRe.ReplaceAllStringFunc(line, func(m string) string {
		sub := passthroughPlaceholderRe.FindStringSubmatch(m)
		idx := 0
		fmt.Sscanf(sub[1], "%d", &idx)
		if idx >= 0 && idx < len(e.passthroughs) {
			return e.passthroughs[idx]
		}
		return m
	})
}
