package hashing

import (
	"fmt"
	"log/slog"
	"slices"

	"treemerge/internal/errors"
	"treemerge/internal/slogutil"
	"treemerge/internal/tree"
)

// Hasher computes and memoizes fingerprints of nodes and groups. The memo
// tables double as reverse indexes and are never evicted.
//
// A Hasher is not safe for concurrent use.
type Hasher struct {
	grouper *tree.Grouper
	logger  *slog.Logger

	nodeHashes  map[tree.ID]Fingerprint
	hashNodes   map[Fingerprint][]tree.Node
	groupHashes map[*tree.Group]Fingerprint
	hashGroups  map[Fingerprint][]*tree.Group
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hasher) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New returns a Hasher that groups children with grouper and reads the hash
// approach of every classifier from the grouper's classifier set.
func New(grouper *tree.Grouper, opts ...Option) *Hasher {
	h := &Hasher{
		grouper:     grouper,
		logger:      slogutil.NewDiscardLogger(),
		nodeHashes:  make(map[tree.ID]Fingerprint),
		hashNodes:   make(map[Fingerprint][]tree.Node),
		groupHashes: make(map[*tree.Group]Fingerprint),
		hashGroups:  make(map[Fingerprint][]*tree.Group),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Grouper returns the grouper the fingerprints are based on.
func (h *Hasher) Grouper() *tree.Grouper { return h.grouper }

// Hash returns the fingerprint of n, computing it on first use. The
// fingerprint combines the fingerprints of n's groups in group order; leaves
// and parents without groups get EmptySeed.
func (h *Hasher) Hash(n tree.Node) (Fingerprint, error) {
	if fp, ok := h.nodeHashes[n.ID()]; ok {
		return fp, nil
	}

	groups, _, err := h.grouper.Groups(n)
	if err != nil {
		return 0, err
	}

	groupHashes := make([]Fingerprint, len(groups))
	for i, g := range groups {
		fp, err := h.GroupHash(g)
		if err != nil {
			return 0, err
		}
		groupHashes[i] = fp
	}

	fp := Combine(groupHashes...)
	h.nodeHashes[n.ID()] = fp
	h.hashNodes[fp] = append(h.hashNodes[fp], n)
	return fp, nil
}

// GroupHash returns the fingerprint of g according to the hash approach of
// its classifier, computing it on first use.
func (h *Hasher) GroupHash(g *tree.Group) (Fingerprint, error) {
	if fp, ok := h.groupHashes[g]; ok {
		return fp, nil
	}

	fp, err := h.computeGroupHash(g)
	if err != nil {
		return 0, err
	}
	h.groupHashes[g] = fp
	h.hashGroups[fp] = append(h.hashGroups[fp], g)
	return fp, nil
}

func (h *Hasher) computeGroupHash(g *tree.Group) (Fingerprint, error) {
	approach := h.grouper.Set().Approach(g.Classifier)
	classifierHash := ClassifierHash(g.Classifier)
	if approach == tree.PredicateOnly {
		return classifierHash, nil
	}

	members := make([]Fingerprint, len(g.Members))
	for i, m := range g.Members {
		fp, err := h.Hash(m)
		if err != nil {
			return 0, fmt.Errorf("hashing %s: %w", m.Name(), err)
		}
		members[i] = fp
	}
	if len(members) == 0 {
		return classifierHash, nil
	}
	slices.Sort(members)

	switch approach {
	case tree.GroupExistence:
		members = slices.Compact(members)
	case tree.NoneOneMultiple:
		members = ReduceDuplicates(members, 2)
	case tree.ExactCount:
	default:
		panic(errors.Internalf("unhandled hash approach %d", approach))
	}
	return Combine(classifierHash, Combine(members...)), nil
}

// Nodes returns the nodes hashed to fp so far, in hashing order.
func (h *Hasher) Nodes(fp Fingerprint) []tree.Node {
	return h.hashNodes[fp]
}

// Groups returns the groups hashed to fp so far, in hashing order.
func (h *Hasher) Groups(fp Fingerprint) []*tree.Group {
	return h.hashGroups[fp]
}

// NodeFilter selects reverse index entries.
type NodeFilter func(fp Fingerprint, nodes []tree.Node) bool

// GroupFilter selects reverse index entries.
type GroupFilter func(fp Fingerprint, groups []*tree.Group) bool

// NodeIndex returns the fingerprint to nodes entries accepted by all filters.
// The returned map is a copy; its slices are shared with the Hasher.
func (h *Hasher) NodeIndex(filters ...NodeFilter) map[Fingerprint][]tree.Node {
	out := make(map[Fingerprint][]tree.Node)
next:
	for fp, nodes := range h.hashNodes {
		for _, keep := range filters {
			if !keep(fp, nodes) {
				continue next
			}
		}
		out[fp] = nodes
	}
	h.logger.Debug("Queried node index",
		"filters", len(filters),
		"fingerprints", len(h.hashNodes),
		"matched", len(out),
	)
	return out
}

// GroupIndex returns the fingerprint to groups entries accepted by all
// filters.
func (h *Hasher) GroupIndex(filters ...GroupFilter) map[Fingerprint][]*tree.Group {
	out := make(map[Fingerprint][]*tree.Group)
next:
	for fp, groups := range h.hashGroups {
		for _, keep := range filters {
			if !keep(fp, groups) {
				continue next
			}
		}
		out[fp] = groups
	}
	h.logger.Debug("Queried group index",
		"filters", len(filters),
		"fingerprints", len(h.hashGroups),
		"matched", len(out),
	)
	return out
}

// CacheStats describes the memo tables of a Hasher.
type CacheStats struct {
	Nodes             int
	Groups            int
	NodeFingerprints  int
	GroupFingerprints int
	GroupedParents    int
}

// LogValue implements slog.LogValuer.
func (s CacheStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("nodes", s.Nodes),
		slog.Int("groups", s.Groups),
		slog.Int("node_fingerprints", s.NodeFingerprints),
		slog.Int("group_fingerprints", s.GroupFingerprints),
		slog.Int("grouped_parents", s.GroupedParents),
	)
}

// CacheStats returns the current size of the memo tables.
func (h *Hasher) CacheStats() CacheStats {
	return CacheStats{
		Nodes:             len(h.nodeHashes),
		Groups:            len(h.groupHashes),
		NodeFingerprints:  len(h.hashNodes),
		GroupFingerprints: len(h.hashGroups),
		GroupedParents:    h.grouper.CacheSize(),
	}
}
