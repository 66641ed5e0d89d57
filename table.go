package asciidoc

import (
	"regexp"
	"strconv"
	"strings"
)

// tableDelimRe matches the `|===` fence shared by every table format
// (§3 "Table", §4.7).
const tableDelim = "|==="

// TableColumn is one parsed column specification: relative width and
// alignment, from the table's "cols" attribute (e.g. "1,2,3" or "<,>,^").
type TableColumn struct {
	Width int
	Align string
}

// Table is a recognized table block.
type Table struct {
	Def     *TableDef
	Cols    []TableColumn
	Rows    [][]string
	HeadRow []string
	FootRow []string
	Attrs   map[string]string
	Title   string
}

// ParseCols parses a table's "cols" attribute into column specs; an empty
// or absent value yields a single unweighted left-aligned column, widened
// to match the widest data row once rows are known (§4.7).
func ParseCols(spec string) []TableColumn {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	var cols []TableColumn
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		col := TableColumn{Width: 1, Align: "<"}
		num := part
		if i := strings.IndexAny(part, "<^>"); i >= 0 {
			col.Align = string(part[i])
			num = strings.TrimSuffix(part[:i], "*")
		}
		if n, err := strconv.Atoi(num); err == nil && n > 0 {
			col.Width = n
		}
		cols = append(cols, col)
	}
	return cols
}

// cellCountRe matches a leading `N*` cell-count multiplier on a cell's text
// (e.g. "2*d"), which repeats the remaining text across N columns (§4.7).
var cellCountRe = regexp.MustCompile(`^(\d+)\*(.*)$`)

// expandCellCounts repeats any `N*text` cell across N columns in place.
func expandCellCounts(cells []string) []string {
	var out []string
	for _, c := range cells {
		if m := cellCountRe.FindStringSubmatch(c); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				for i := 0; i < n; i++ {
					out = append(out, m[2])
				}
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// SplitRow splits one source line into cell texts according to format
// ("psv" pipe-separated, "csv" comma-separated, "dsv" colon-separated),
// honoring a leading backslash escape of the separator and a leading `N*`
// cell-count multiplier on a cell (§4.7).
func SplitRow(line, format string) []string {
	sep := byte('|')
	switch format {
	case "csv":
		sep = ','
	case "dsv":
		sep = ':'
	}
	var cells []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' && i+1 < len(line) && line[i+1] == sep {
			cur.WriteByte(sep)
			i++
			continue
		}
		if c == sep {
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	if cur.Len() > 0 || len(cells) > 0 {
		cells = append(cells, strings.TrimSpace(cur.String()))
	}
	if format == "psv" && len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	return expandCellCounts(cells)
}

// ParseRows splits the lines between the opening and closing `|===`
// fences into rows of cells, wrapping logical rows that a cell's embedded
// newline split across source lines (a trailing unmatched separator count
// signals continuation, approximated here by a blank line acting as a row
// break when no explicit row count is known).
func ParseRows(lines []string, format string) [][]string {
	var rows [][]string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, SplitRow(line, format))
	}
	return rows
}

// Render writes the table wrapped in its template tag, splitting header and
// footer rows out per the "options=header,footer" convention (§4.7).
func (t *Table) Render(e *Evaluator, w *Writer) {
	tag, hasTag := e.Config.Tags[t.Def.Template]
	tags := e.Config.TableTags[t.Def.Tags]
	if hasTag {
		stag, _ := tag.Expand(e, t.Attrs)
		if stag != "" {
			w.WriteLine(stag)
		}
	}
	if len(t.HeadRow) > 0 {
		t.renderRow(e, w, tags, "headrow", "headdata", t.HeadRow)
	}
	for _, row := range t.Rows {
		t.renderRow(e, w, tags, "bodyrow", "bodydata", row)
	}
	if len(t.FootRow) > 0 {
		t.renderRow(e, w, tags, "footrow", "footdata", t.FootRow)
	}
	if hasTag {
		_, etag := tag.Expand(e, t.Attrs)
		if etag != "" {
			w.WriteLine(etag)
		}
	}
}

func (t *Table) renderRow(e *Evaluator, w *Writer, tags TableTagSet, rowKey, dataKey string, cells []string) {
	rowTag, hasRow := tags[rowKey]
	if hasRow {
		stag, _ := rowTag.Expand(e, nil)
		if stag != "" {
			w.WriteLine(stag)
		}
	}
	dataTag, hasData := tags[dataKey]
	paraTag := tags["paragraph"]
	for i, cell := range cells {
		align := "<"
		if i < len(t.Cols) {
			align = t.Cols[i].Align
		}
		overlay := map[string]string{"align": align}
		if hasData {
			stag, etag := dataTag.Expand(e, overlay)
			if stag != "" {
				w.WriteLine(stag)
			}
			pstag, petag := paraTag.Expand(e, overlay)
			if pstag != "" {
				w.WriteLine(pstag)
			}
			w.Write(e.Subs(cell, t.Def.Subs)...)
			if petag != "" {
				w.WriteLine(petag)
			}
			if etag != "" {
				w.WriteLine(etag)
			}
		}
	}
	if hasRow {
		_, etag := rowTag.Expand(e, nil)
		if etag != "" {
			w.WriteLine(etag)
		}
	}
}
