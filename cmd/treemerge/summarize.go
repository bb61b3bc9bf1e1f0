package main

import (
	"github.com/spf13/cobra"

	"treemerge/internal/hashing"
	"treemerge/internal/merge"
	"treemerge/internal/output"
	"treemerge/internal/render"
	"treemerge/internal/tree"
)

var (
	summarizeFormat  string
	summarizeSource  string
	summarizeTree    string
	summarizeExclude []string
	summarizeProfile string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <path>",
	Short: "Print the merged summary of a tree",
	Long: `Summarize reads the tree at <path>, merges the root's children by shape and
prints one line per merge, nested by depth.

<path> is a directory, a snapshot file (.json or .json.zst) or a catalog
database (.db, .sqlite). Formats: text, json, yaml, toml.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	f := summarizeCmd.Flags()
	f.StringVar(&summarizeFormat, "format", "", "Output format (default from config)")
	f.StringVar(&summarizeSource, "source", sourceAuto, "Source kind: auto, dir, snapshot or catalog")
	f.StringVar(&summarizeTree, "tree", "", "Tree name in a catalog")
	f.StringSliceVar(&summarizeExclude, "exclude", nil, "Hide nodes whose name matches a glob (repeatable)")
	f.StringVar(&summarizeProfile, "profile", "", "Classifier profile file")
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(summarizeFormat)
	if err != nil {
		return err
	}
	_, set, err := loadClassifiers(appConfig, summarizeProfile)
	if err != nil {
		return err
	}
	root, err := openTree(cmd.Context(), appConfig, args[0], sourceOptions{
		kind:     summarizeSource,
		treeName: summarizeTree,
		exclude:  summarizeExclude,
	})
	if err != nil {
		return err
	}

	var (
		builder render.Builder
		report  *render.ReportBuilder
		text    *render.TextBuilder
	)
	if format == output.FormatText {
		text = render.NewTextBuilder()
		builder = text
	} else {
		report = render.NewReportBuilder()
		builder = report
	}

	nodes, err := summarize(root, set, builder)
	if err != nil {
		return err
	}

	if text != nil {
		return encodeOutput(cmd, format, text)
	}
	r := report.Report()
	r.Source = args[0]
	r.Nodes = nodes
	return encodeOutput(cmd, format, r)
}

// summarize merges root's children and feeds the result to b. It returns
// the number of nodes in the tree.
func summarize(root tree.Node, set *tree.ClassifierSet, b render.Builder) (int, error) {
	nodes, err := tree.Count(root)
	if err != nil {
		return 0, err
	}
	children, err := root.Children()
	if err != nil {
		return 0, err
	}

	grouper := tree.NewGrouper(set)
	hasher := hashing.New(grouper, hashing.WithLogger(logger))
	merges, err := merge.New(hasher, merge.WithLogger(logger)).SeparateAndMerge(children)
	if err != nil {
		return 0, err
	}
	merge.Sort(merges)

	logger.Info("Merged tree",
		"root", root.Name(),
		"nodes", nodes,
		"merges", len(merges),
		"cache", hasher.CacheStats(),
	)
	return nodes, render.NewWalker(b, grouper).AddAll(merges)
}

// outputFormat resolves --format, falling back to the configured format.
func outputFormat(flag string) (output.Format, error) {
	if flag == "" {
		flag = appConfig.Output.Format
	}
	return output.ParseFormat(flag)
}

func encodeOutput(cmd *cobra.Command, format output.Format, v interface{}) error {
	return output.Encode(cmd.OutOrStdout(), format, v)
}
