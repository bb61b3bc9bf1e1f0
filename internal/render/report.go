package render

import (
	"treemerge/internal/output"
	"treemerge/internal/tree"
)

// Report is the structured form of a merge listing.
type Report struct {
	Source string         `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Nodes  int            `json:"nodes" yaml:"nodes" toml:"nodes"`
	Merges []*MergeReport `json:"merges,omitempty" yaml:"merges,omitempty" toml:"merges,omitempty"`
}

// MergeReport describes one merge and its submerges.
type MergeReport struct {
	Name         string         `json:"name" yaml:"name" toml:"name"`
	Groups       []GroupCount   `json:"groups,omitempty" yaml:"groups,omitempty" toml:"groups,omitempty"`
	Stats        []StatReport   `json:"stats,omitempty" yaml:"stats,omitempty" toml:"stats,omitempty"`
	ChildCount   int            `json:"childCount,omitempty" yaml:"child_count,omitempty" toml:"child_count,omitempty"`
	NonLeafCount int            `json:"nonLeafCount,omitempty" yaml:"non_leaf_count,omitempty" toml:"non_leaf_count,omitempty"`
	Submerges    []*MergeReport `json:"submerges,omitempty" yaml:"submerges,omitempty" toml:"submerges,omitempty"`
}

// GroupCount is the number of merged nodes of one classifier.
type GroupCount struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Count int    `json:"count" yaml:"count" toml:"count"`
}

// StatReport mirrors tree.GroupingStats.
type StatReport struct {
	Name    string  `json:"name" yaml:"name" toml:"name"`
	Min     int     `json:"min" yaml:"min" toml:"min"`
	Max     int     `json:"max" yaml:"max" toml:"max"`
	Sum     int     `json:"sum" yaml:"sum" toml:"sum"`
	Groups  int     `json:"groups" yaml:"groups" toml:"groups"`
	Average float64 `json:"average" yaml:"average" toml:"average"`
}

// ReportBuilder collects merges into a Report.
type ReportBuilder struct {
	report *Report
	stack  []*MergeReport
}

func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{report: &Report{}}
}

// Report returns the report built so far.
func (b *ReportBuilder) Report() *Report { return b.report }

func (b *ReportBuilder) current() *MergeReport { return b.stack[len(b.stack)-1] }

func (b *ReportBuilder) MergeName(name string, depth int) {
	m := &MergeReport{Name: name}
	if depth == 0 {
		b.report.Merges = append(b.report.Merges, m)
	} else {
		parent := b.stack[depth-1]
		parent.Submerges = append(parent.Submerges, m)
	}
	b.stack = append(b.stack[:depth], m)
}

func (b *ReportBuilder) MergeGroup(size int, name string) {
	cur := b.current()
	cur.Groups = append(cur.Groups, GroupCount{Name: name, Count: size})
}

func (b *ReportBuilder) Stat(name string, s *tree.GroupingStats) {
	cur := b.current()
	cur.Stats = append(cur.Stats, StatReport{
		Name:    name,
		Min:     s.MinimalCount(),
		Max:     s.MaximalCount(),
		Sum:     s.ChildSum(),
		Groups:  s.GroupCount(),
		Average: output.RoundFloat(float64(s.Average())),
	})
}

func (b *ReportBuilder) MergeChildInfo(childCount, nonLeafCount int) {
	cur := b.current()
	cur.ChildCount = childCount
	cur.NonLeafCount = nonLeafCount
}

func (b *ReportBuilder) MergeGroupDelimiter() {}
func (b *ReportBuilder) ChildrenStatsHeader() {}
func (b *ReportBuilder) InMergeDelimiter()    {}
func (b *ReportBuilder) MergeSeparator()      {}
