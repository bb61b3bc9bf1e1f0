// Package render turns NodeMerge trees into output.
//
// A Walker traverses merges depth-first and reports what it finds through
// the hooks of a Builder. Builders only decide how each piece looks; the
// traversal, naming and ordering are the Walker's.
package render

import (
	"fmt"
	"slices"

	"treemerge/internal/merge"
	"treemerge/internal/tree"
)

// Builder receives the pieces of a merge report in output order.
type Builder interface {
	// MergeName starts a merge. depth is 0 for top-level merges.
	MergeName(name string, depth int)
	// MergeGroupDelimiter precedes every MergeGroup call.
	MergeGroupDelimiter()
	// MergeGroup reports that size merged nodes belong to the named group.
	MergeGroup(size int, name string)
	// ChildrenStatsHeader precedes the Stat calls of a merge. It is not
	// called when the non-leaf nodes have no grouped children.
	ChildrenStatsHeader()
	// Stat reports the group statistics of the named classifier over the
	// children of the merged parents.
	Stat(name string, stats *tree.GroupingStats)
	// InMergeDelimiter separates the statistics from the child info.
	InMergeDelimiter()
	// MergeChildInfo reports how many children the merged parents have.
	MergeChildInfo(childCount, nonLeafCount int)
	// MergeSeparator precedes every submerge and follows every top-level
	// merge.
	MergeSeparator()
}

// MergeName returns the default name of the index-th of count merges at
// depth, with index starting at 1.
func MergeName(index, count, depth int) string {
	return fmt.Sprintf("M%d-%d/%d", depth, index, count)
}

// Walker feeds merges to a Builder.
type Walker struct {
	builder Builder
	grouper *tree.Grouper
	stats   *tree.StatsCalculator
	naming  []*tree.Classifier
	added   int
}

// NewWalker returns a Walker reporting to b. Group and statistic names are
// the display names of g's classifier set, ordered by classifier priority.
func NewWalker(b Builder, g *tree.Grouper) *Walker {
	return &Walker{
		builder: b,
		grouper: g,
		stats:   tree.NewStatsCalculator(g),
		naming:  g.Set().Classifiers(),
	}
}

// AddAll adds merges in the given order.
func (w *Walker) AddAll(merges []*merge.NodeMerge) error {
	for _, m := range merges {
		if err := w.AddMerge(m, len(merges)); err != nil {
			return err
		}
	}
	return nil
}

// AddMerge adds m as the next of count top-level merges.
func (w *Walker) AddMerge(m *merge.NodeMerge, count int) error {
	w.added++
	if err := w.addMerge(m, 0, MergeName(w.added, count, 0)); err != nil {
		return err
	}
	w.builder.MergeSeparator()
	return nil
}

func (w *Walker) addMerge(m *merge.NodeMerge, depth int, name string) error {
	set := w.grouper.Set()
	w.builder.MergeName(name, depth)

	groups := w.grouper.GroupNodes(m.MergedNodes())
	slices.SortStableFunc(groups, w.compareNaming)
	for _, g := range groups {
		w.builder.MergeGroupDelimiter()
		w.builder.MergeGroup(g.Len(), set.Display(g.Classifier))
	}

	nonLeaves := m.NonLeaves()
	if len(nonLeaves) > 0 {
		stats, err := w.stats.Stats(nonLeaves)
		if err != nil {
			return err
		}
		if len(stats) > 0 {
			w.builder.ChildrenStatsHeader()
		}
		for _, c := range w.naming {
			if s, ok := stats[c]; ok {
				w.builder.Stat(set.Display(c), s)
			}
		}
		w.builder.InMergeDelimiter()
		w.builder.MergeChildInfo(m.ChildCount(), len(nonLeaves))
	}

	submerges := slices.Clone(m.Submerges())
	merge.SortSubmerges(submerges)
	depth++
	for i, s := range submerges {
		w.builder.MergeSeparator()
		if err := w.addMerge(s.NodeMerge, depth, MergeName(i+1, len(submerges), depth)); err != nil {
			return err
		}
	}
	return nil
}

// compareNaming puts the group whose classifier comes first in the naming
// order after the other one.
func (w *Walker) compareNaming(a, b *tree.Group) int {
	for _, c := range w.naming {
		if c == a.Classifier {
			return 1
		}
		if c == b.Classifier {
			return -1
		}
	}
	return 0
}
