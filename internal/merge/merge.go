// Package merge collapses nodes with equal fingerprints into NodeMerge trees.
package merge

import (
	"cmp"
	"slices"

	"treemerge/internal/tree"
)

// NodeMerge represents nodes with the same fingerprint merged into one entry.
// Its leaves are kept as they are; the children of its parents are merged
// again, level by level, into submerges.
//
// Every node that produced a merge appears in exactly one of Leaves,
// Childless or the Parents of some submerge.
type NodeMerge struct {
	leaves    []tree.Node
	childless []tree.Node
	submerges []*NodeSubMerge
}

// NodeSubMerge is a merge built from the children of parents inside an
// enclosing merge.
type NodeSubMerge struct {
	*NodeMerge
	parents []tree.Node
}

// Parents returns the nodes of the enclosing merge whose children produced
// this submerge.
func (s *NodeSubMerge) Parents() []tree.Node { return s.parents }

// Leaves returns the merged nodes that cannot have children.
func (m *NodeMerge) Leaves() []tree.Node { return m.leaves }

// Childless returns the merged parents without any children. They produce
// no submerge.
func (m *NodeMerge) Childless() []tree.Node { return m.childless }

// Submerges returns the merges built from the children of the merged
// parents, in the order their fingerprints were first seen.
func (m *NodeMerge) Submerges() []*NodeSubMerge { return m.submerges }

// NonLeaves returns the merged parents: those referenced by submerges, each
// once, followed by the childless ones.
func (m *NodeMerge) NonLeaves() []tree.Node {
	seen := make(map[tree.ID]bool)
	var out []tree.Node
	for _, s := range m.submerges {
		for _, p := range s.parents {
			if seen[p.ID()] {
				continue
			}
			seen[p.ID()] = true
			out = append(out, p)
		}
	}
	return append(out, m.childless...)
}

// MergedNodes returns every node merged by m, leaves first.
func (m *NodeMerge) MergedNodes() []tree.Node {
	nonLeaves := m.NonLeaves()
	out := make([]tree.Node, 0, len(m.leaves)+len(nonLeaves))
	out = append(out, m.leaves...)
	return append(out, nonLeaves...)
}

func (m *NodeMerge) MergedCount() int   { return len(m.leaves) + len(m.NonLeaves()) }
func (m *NodeMerge) LeafCount() int     { return len(m.leaves) }
func (m *NodeMerge) SubmergeCount() int { return len(m.submerges) }

// ChildCount returns the number of children of all merged parents, which is
// the number of nodes merged by the submerges together.
func (m *NodeMerge) ChildCount() int {
	count := 0
	for _, s := range m.submerges {
		count += s.MergedCount()
	}
	return count
}

// Compare orders merges by merged node count, then by submerge count, both
// ascending, then by leaf count descending.
func Compare(a, b *NodeMerge) int {
	if c := cmp.Compare(a.MergedCount(), b.MergedCount()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.SubmergeCount(), b.SubmergeCount()); c != 0 {
		return c
	}
	return cmp.Compare(b.LeafCount(), a.LeafCount())
}

// Sort sorts merges with Compare, keeping the original order of equal ones.
func Sort(merges []*NodeMerge) {
	slices.SortStableFunc(merges, Compare)
}

// SortSubmerges sorts submerges with Compare, keeping the original order of
// equal ones.
func SortSubmerges(submerges []*NodeSubMerge) {
	slices.SortStableFunc(submerges, func(a, b *NodeSubMerge) int {
		return Compare(a.NodeMerge, b.NodeMerge)
	})
}
