package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"treemerge/internal/sources/snapshot"
	"treemerge/internal/tree"
)

var (
	snapshotSource  string
	snapshotTree    string
	snapshotExclude []string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <path> <out>",
	Short: "Save a tree as a snapshot file",
	Long: `Snapshot captures the tree at <path> into a JSON document. The file is
zstd-compressed when <out> ends in ` + snapshot.CompressedExt + `.`,
	Args: cobra.ExactArgs(2),
	RunE: runSnapshot,
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVar(&snapshotSource, "source", sourceAuto, "Source kind: auto, dir, snapshot or catalog")
	f.StringVar(&snapshotTree, "tree", "", "Tree name in a catalog")
	f.StringSliceVar(&snapshotExclude, "exclude", nil, "Leave out nodes whose name matches a glob (repeatable)")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	root, err := openTree(cmd.Context(), appConfig, args[0], sourceOptions{
		kind:     snapshotSource,
		treeName: snapshotTree,
		exclude:  snapshotExclude,
	})
	if err != nil {
		return err
	}

	doc, err := snapshot.Capture(root)
	if err != nil {
		return err
	}
	if err := snapshot.WriteFile(args[1], doc); err != nil {
		return err
	}

	nodes, err := tree.Count(doc.Tree())
	if err != nil {
		return err
	}
	logger.Info("Wrote snapshot", "path", args[1], "nodes", nodes, "compressed", snapshot.IsCompressed(args[1]))
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d nodes to %s\n", nodes, args[1])
	return nil
}
