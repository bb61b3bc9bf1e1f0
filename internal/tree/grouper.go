package tree

import "fmt"

// Grouper buckets the children of a parent by the first classifier they
// match. Results are cached per parent ID for the lifetime of the Grouper.
//
// A Grouper is not safe for concurrent use.
type Grouper struct {
	set   *ClassifierSet
	cache map[ID][]*Group
}

// NewGrouper returns a Grouper classifying with set.
func NewGrouper(set *ClassifierSet) *Grouper {
	return &Grouper{
		set:   set,
		cache: make(map[ID][]*Group),
	}
}

// Set returns the classifiers used by the Grouper.
func (g *Grouper) Set() *ClassifierSet { return g.set }

// Groups returns the groups formed by parent's direct children, in
// classifier priority order. ok is false when parent is a leaf. Children
// that match no classifier do not appear in any group.
func (g *Grouper) Groups(parent Node) (groups []*Group, ok bool, err error) {
	if parent.Kind() != Parent {
		return nil, false, nil
	}
	if cached, hit := g.cache[parent.ID()]; hit {
		return cached, true, nil
	}

	children, err := parent.Children()
	if err != nil {
		return nil, false, fmt.Errorf("grouping children of %s: %w", parent.Name(), err)
	}

	groups = g.GroupNodes(children)
	g.cache[parent.ID()] = groups
	return groups, true, nil
}

// GroupNodes buckets an arbitrary node list the same way, without caching.
func (g *Grouper) GroupNodes(nodes []Node) []*Group {
	buckets := make([]*Group, g.set.Len())
	for _, n := range nodes {
		for i, r := range g.set.rules {
			if !r.Classifier.Match(n) {
				continue
			}
			if buckets[i] == nil {
				buckets[i] = &Group{Classifier: r.Classifier}
			}
			buckets[i].Members = append(buckets[i].Members, n)
			break
		}
	}

	groups := make([]*Group, 0, len(buckets))
	for _, b := range buckets {
		if b != nil {
			groups = append(groups, b)
		}
	}
	return groups
}

// CacheSize returns the number of parents grouped so far.
func (g *Grouper) CacheSize() int { return len(g.cache) }
