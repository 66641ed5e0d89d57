package asciidoc

// CalloutMap assigns sequential callout numbers to the `<N>` markers found
// in a listing block and recalls them when the matching `<N>` annotation
// appears in the following callout list (§3 "Callout", §4.6).
//
// Grounded on the original tool's Lex.callout_map / calloutmap bookkeeping;
// reshaped as an explicit type instead of a lexer-global list.
type CalloutMap struct {
	marks []string
	next  int
}

// NewCalloutMap returns an empty map, reset at the start of each delimited
// block that can contain callouts.
func NewCalloutMap() *CalloutMap {
	return &CalloutMap{}
}

// Register records one `<N>` (or `<.>` for auto-numbered) marker in source
// order and returns its 1-based display number.
func (c *CalloutMap) Register(mark string) int {
	c.next++
	c.marks = append(c.marks, mark)
	return c.next
}

// Reset clears the map for the next delimited block.
func (c *CalloutMap) Reset() {
	c.marks = nil
	c.next = 0
}

// Count returns how many callout marks have been registered since the last
// Reset.
func (c *CalloutMap) Count() int {
	return c.next
}

// Marks returns a copy of the marks registered since the last Reset, in
// source order, for correlation against a following callout list (§3
// "Callout", §8 "callout correlation").
func (c *CalloutMap) Marks() []string {
	return append([]string(nil), c.marks...)
}
