// Package debug has helpers producing human readable dumps for debug
// reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const defaultTextLimit = 160

// TreeWriter renders indented tree of labeled lines. Text values are quoted
// and shortened, handbook paragraphs could be very long.
type TreeWriter struct {
	sb    strings.Builder
	limit int
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{limit: defaultTextLimit}
}

// WithTextLimit sets maximum number of runes shown for text values, 0 means
// no limit.
func (tw *TreeWriter) WithTextLimit(n int) *TreeWriter {
	tw.limit = max(n, 0)
	return tw
}

func (tw *TreeWriter) String() string {
	return tw.sb.String()
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(&tw.sb, format, args...)
	tw.sb.WriteByte('\n')
}

// TextBlock writes "label: value" line, empty value is written as is.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.sb.WriteString(label)
	tw.sb.WriteString(": ")
	tw.sb.WriteString(tw.encode(value))
	tw.sb.WriteByte('\n')
}

func (tw *TreeWriter) indent(depth int) {
	tw.sb.WriteString(strings.Repeat("  ", max(depth, 0)))
}

func (tw *TreeWriter) encode(raw string) string {
	if raw == "" {
		return raw
	}
	n := utf8.RuneCountInString(raw)
	if tw.limit == 0 || n <= tw.limit {
		return strconv.Quote(raw)
	}
	cut := 0
	for range tw.limit {
		_, size := utf8.DecodeRuneInString(raw[cut:])
		cut += size
	}
	return fmt.Sprintf("%s (+%d runes)", strconv.Quote(raw[:cut]), n-tw.limit)
}
