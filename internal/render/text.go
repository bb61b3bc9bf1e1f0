package render

import (
	"strconv"
	"strings"

	"treemerge/internal/tree"
)

// TextBuilder renders merges as an indented bullet list, one merge per line:
//
//	• M0-1/2, 2×DIRECTORY | Stats for children: (TEXT:⟦1,3⟧,x̄=4÷2=2.0); 4 children in the 2 non-leaf nodes were merged as follows:
//	  • M1-1/1, 4×TEXT
type TextBuilder struct {
	sb     strings.Builder
	indent string
}

// NewTextBuilder returns a TextBuilder indenting two spaces per depth.
func NewTextBuilder() *TextBuilder {
	return &TextBuilder{indent: "  "}
}

func (b *TextBuilder) MergeName(name string, depth int) {
	b.sb.WriteString(strings.Repeat(b.indent, depth))
	b.sb.WriteString("• ")
	b.sb.WriteString(name)
}

func (b *TextBuilder) MergeGroupDelimiter() { b.sb.WriteString(", ") }

func (b *TextBuilder) MergeGroup(size int, name string) {
	b.sb.WriteString(strconv.Itoa(size))
	b.sb.WriteString("×")
	b.sb.WriteString(name)
}

func (b *TextBuilder) ChildrenStatsHeader() { b.sb.WriteString(" | Stats for children:") }

func (b *TextBuilder) Stat(name string, s *tree.GroupingStats) {
	b.sb.WriteString(" (")
	b.sb.WriteString(name)
	b.sb.WriteString(":⟦")
	b.sb.WriteString(strconv.Itoa(s.MinimalCount()))
	b.sb.WriteString(",")
	b.sb.WriteString(strconv.Itoa(s.MaximalCount()))
	b.sb.WriteString("⟧")
	if s.MinimalCount() != s.MaximalCount() {
		b.sb.WriteString(",x̄=")
		b.sb.WriteString(strconv.Itoa(s.ChildSum()))
		b.sb.WriteString("÷")
		b.sb.WriteString(strconv.Itoa(s.GroupCount()))
		b.sb.WriteString("=")
		b.sb.WriteString(FormatAverage(s.Average()))
	}
	b.sb.WriteString(")")
}

func (b *TextBuilder) InMergeDelimiter() { b.sb.WriteString("; ") }

func (b *TextBuilder) MergeChildInfo(childCount, nonLeafCount int) {
	b.sb.WriteString(strconv.Itoa(childCount))
	b.sb.WriteString(" children in the ")
	b.sb.WriteString(strconv.Itoa(nonLeafCount))
	b.sb.WriteString(" non-leaf nodes were merged as follows:")
}

func (b *TextBuilder) MergeSeparator() { b.sb.WriteString("\n") }

// String returns everything rendered so far.
func (b *TextBuilder) String() string { return b.sb.String() }

// FormatAverage prints the shortest decimal representation of avg that
// reads back as the same float32, always with a fractional part.
func FormatAverage(avg float32) string {
	s := strconv.FormatFloat(float64(avg), 'f', -1, 32)
	if !strings.ContainsAny(s, ".IN") {
		s += ".0"
	}
	return s
}
