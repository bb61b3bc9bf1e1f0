package main

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"treemerge/internal/errors"
	"treemerge/internal/hashing"
	"treemerge/internal/tree"
)

var (
	hashesFormat      string
	hashesSource      string
	hashesTree        string
	hashesExclude     []string
	hashesProfile     string
	hashesMin         int
	hashesParentsOnly bool
)

var hashesCmd = &cobra.Command{
	Use:   "hashes <path>",
	Short: "List fingerprints shared by several nodes",
	Long: `Hashes fingerprints every node of the tree at <path> and lists the
fingerprints carried by at least --min nodes, largest first.`,
	Args: cobra.ExactArgs(1),
	RunE: runHashes,
}

func init() {
	f := hashesCmd.Flags()
	f.StringVar(&hashesFormat, "format", "", "Output format (default from config)")
	f.StringVar(&hashesSource, "source", sourceAuto, "Source kind: auto, dir, snapshot or catalog")
	f.StringVar(&hashesTree, "tree", "", "Tree name in a catalog")
	f.StringSliceVar(&hashesExclude, "exclude", nil, "Hide nodes whose name matches a glob (repeatable)")
	f.StringVar(&hashesProfile, "profile", "", "Classifier profile file")
	f.IntVar(&hashesMin, "min", 2, "Only list fingerprints shared by at least this many nodes")
	f.BoolVar(&hashesParentsOnly, "parents-only", false, "Only list fingerprints of non-leaf nodes")
	rootCmd.AddCommand(hashesCmd)
}

// HashEntry is one reverse index entry.
type HashEntry struct {
	Fingerprint hashing.Fingerprint `json:"fingerprint" yaml:"fingerprint" toml:"fingerprint"`
	Count       int                 `json:"count" yaml:"count" toml:"count"`
	Nodes       []string            `json:"nodes" yaml:"nodes" toml:"nodes"`
}

// HashListing is the output of the hashes command.
type HashListing struct {
	Source  string      `json:"source" yaml:"source" toml:"source"`
	Entries []HashEntry `json:"entries" yaml:"entries" toml:"entries"`
}

func (l *HashListing) String() string {
	var sb strings.Builder
	for _, e := range l.Entries {
		fmt.Fprintf(&sb, "%11d  %d×  %s\n", e.Fingerprint, e.Count, strings.Join(e.Nodes, ", "))
	}
	return sb.String()
}

// pather is implemented by nodes that know their location in the source.
type pather interface {
	Path() string
}

func nodeLabel(n tree.Node) string {
	if p, ok := n.(pather); ok {
		return p.Path()
	}
	if f, ok := n.(*tree.Filtered); ok {
		return nodeLabel(f.Base())
	}
	return n.Name()
}

func runHashes(cmd *cobra.Command, args []string) error {
	if hashesMin < 1 {
		return errors.Invalidf("--min must be at least 1, got %d", hashesMin)
	}
	format, err := outputFormat(hashesFormat)
	if err != nil {
		return err
	}
	_, set, err := loadClassifiers(appConfig, hashesProfile)
	if err != nil {
		return err
	}
	root, err := openTree(cmd.Context(), appConfig, args[0], sourceOptions{
		kind:     hashesSource,
		treeName: hashesTree,
		exclude:  hashesExclude,
	})
	if err != nil {
		return err
	}

	listing, err := listHashes(root, set, hashesMin, hashesParentsOnly)
	if err != nil {
		return err
	}
	listing.Source = args[0]
	return encodeOutput(cmd, format, listing)
}

// listHashes hashes the whole tree and queries the reverse index.
func listHashes(root tree.Node, set *tree.ClassifierSet, minCount int, parentsOnly bool) (*HashListing, error) {
	hasher := hashing.New(tree.NewGrouper(set), hashing.WithLogger(logger))
	err := tree.Walk(root, func(n tree.Node, _ int) error {
		_, err := hasher.Hash(n)
		return err
	})
	if err != nil {
		return nil, err
	}

	counted := func(nodes []tree.Node) []tree.Node { return nodes }
	if parentsOnly {
		counted = parentsOf
	}

	index := hasher.NodeIndex(func(_ hashing.Fingerprint, nodes []tree.Node) bool {
		return len(counted(nodes)) >= minCount
	})
	listing := &HashListing{Entries: make([]HashEntry, 0, len(index))}
	for fp, nodes := range index {
		nodes = counted(nodes)
		labels := make([]string, len(nodes))
		for i, n := range nodes {
			labels[i] = nodeLabel(n)
		}
		listing.Entries = append(listing.Entries, HashEntry{Fingerprint: fp, Count: len(nodes), Nodes: labels})
	}
	slices.SortFunc(listing.Entries, func(a, b HashEntry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Fingerprint, b.Fingerprint)
	})

	logger.Info("Queried fingerprints", "matched", len(listing.Entries), "cache", hasher.CacheStats())
	return listing, nil
}

// parentsOf keeps the non-leaf nodes. Leaves share EmptySeed with childless
// parents, so one fingerprint can hold both.
func parentsOf(nodes []tree.Node) []tree.Node {
	var out []tree.Node
	for _, n := range nodes {
		if n.Kind() == tree.Parent {
			out = append(out, n)
		}
	}
	return out
}
