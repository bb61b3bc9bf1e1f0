package merge

import (
	"fmt"
	"log/slog"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"treemerge/internal/hashing"
	"treemerge/internal/slogutil"
	"treemerge/internal/tree"
)

// Merger builds NodeMerge trees from fingerprints.
type Merger struct {
	hasher *hashing.Hasher
	logger *slog.Logger
}

// Option configures a Merger.
type Option func(*Merger)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Merger) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New returns a Merger using h for fingerprints.
func New(h *hashing.Hasher, opts ...Option) *Merger {
	m := &Merger{
		hasher: h,
		logger: slogutil.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SeparateAndMerge partitions nodes by fingerprint and returns one merge per
// fingerprint, in the order the fingerprints were first seen.
func (m *Merger) SeparateAndMerge(nodes []tree.Node) ([]*NodeMerge, error) {
	buckets, err := m.bucketByHash(nodes)
	if err != nil {
		return nil, err
	}

	merges := make([]*NodeMerge, 0, buckets.Size())
	it := buckets.Iterator()
	for it.Next() {
		merged, err := m.merge(it.Value().([]tree.Node))
		if err != nil {
			return nil, err
		}
		merges = append(merges, merged)
	}

	m.logger.Debug("Merged nodes",
		"nodes", len(nodes),
		"merges", len(merges),
		"cache", m.hasher.CacheStats(),
	)
	return merges, nil
}

// parentChildren pairs a parent with those of its children sharing one
// fingerprint.
type parentChildren struct {
	parent   tree.Node
	children []tree.Node
}

// merge builds the merge of nodes already known to share a fingerprint.
func (m *Merger) merge(nodes []tree.Node) (*NodeMerge, error) {
	merged := &NodeMerge{}
	childBuckets := linkedhashmap.New()

	for _, n := range nodes {
		if n.Kind() != tree.Parent {
			merged.leaves = append(merged.leaves, n)
			continue
		}
		children, err := n.Children()
		if err != nil {
			return nil, fmt.Errorf("reading children of %s: %w", n.Name(), err)
		}
		if len(children) == 0 {
			merged.childless = append(merged.childless, n)
			continue
		}

		perParent, err := m.bucketByHash(children)
		if err != nil {
			return nil, err
		}
		it := perParent.Iterator()
		for it.Next() {
			var pairs []parentChildren
			if existing, found := childBuckets.Get(it.Key()); found {
				pairs = existing.([]parentChildren)
			}
			pairs = append(pairs, parentChildren{parent: n, children: it.Value().([]tree.Node)})
			childBuckets.Put(it.Key(), pairs)
		}
	}

	it := childBuckets.Iterator()
	for it.Next() {
		pairs := it.Value().([]parentChildren)
		parents := make([]tree.Node, 0, len(pairs))
		var children []tree.Node
		for _, p := range pairs {
			parents = append(parents, p.parent)
			children = append(children, p.children...)
		}

		sub, err := m.merge(children)
		if err != nil {
			return nil, err
		}
		merged.submerges = append(merged.submerges, &NodeSubMerge{NodeMerge: sub, parents: parents})
	}
	return merged, nil
}

// bucketByHash groups nodes by fingerprint. Keys are hashing.Fingerprint,
// values []tree.Node, both in first-seen order.
func (m *Merger) bucketByHash(nodes []tree.Node) (*linkedhashmap.Map, error) {
	buckets := linkedhashmap.New()
	for _, n := range nodes {
		fp, err := m.hasher.Hash(n)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", n.Name(), err)
		}
		var bucket []tree.Node
		if existing, found := buckets.Get(fp); found {
			bucket = existing.([]tree.Node)
		}
		buckets.Put(fp, append(bucket, n))
	}
	return buckets, nil
}
