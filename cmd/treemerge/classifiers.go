package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"treemerge/internal/classify"
	"treemerge/internal/output"
	"treemerge/internal/tree"
)

var (
	classifiersFormat  string
	classifiersProfile string
)

var classifiersCmd = &cobra.Command{
	Use:   "classifiers",
	Short: "Print the effective classifier profile",
	Long: `Classifiers prints the classifiers in priority order, as selected by
--profile, the config file or the built-in default. Structured formats print
a profile file that can be loaded back with --profile.`,
	Args: cobra.NoArgs,
	RunE: runClassifiers,
}

func init() {
	f := classifiersCmd.Flags()
	f.StringVar(&classifiersFormat, "format", "", "Output format (default from config)")
	f.StringVar(&classifiersProfile, "profile", "", "Classifier profile file")
	rootCmd.AddCommand(classifiersCmd)
}

// profileTable renders a profile as an aligned table.
type profileTable struct {
	profile classify.Profile
}

func (p profileTable) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Profile: %s\n\n", p.profile.Name)

	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tDISPLAY\tMATCH\tAPPROACH")
	for i, d := range p.profile.Classifiers {
		display := d.Display
		if display == "" {
			display = d.Name
		}
		approach := d.Approach
		if approach == "" {
			approach = tree.ExactCount.String()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, d.Name, display, describeMatch(d), approach)
	}
	w.Flush()
	return sb.String()
}

func describeMatch(d classify.Definition) string {
	var parts []string
	if len(d.Prefixes) > 0 {
		parts = append(parts, "prefix "+strings.Join(d.Prefixes, " "))
	}
	if len(d.Suffixes) > 0 {
		parts = append(parts, "suffix "+strings.Join(d.Suffixes, " "))
	}
	if len(parts) == 0 {
		return d.Match
	}
	sep := " or "
	if d.Conjunction {
		sep = " and "
	}
	s := strings.Join(parts, sep)
	if d.FoldCase {
		s += " (any case)"
	}
	return s
}

func runClassifiers(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(classifiersFormat)
	if err != nil {
		return err
	}
	profile, _, err := loadClassifiers(appConfig, classifiersProfile)
	if err != nil {
		return err
	}
	if format == output.FormatText {
		return encodeOutput(cmd, format, profileTable{profile: profile})
	}
	return encodeOutput(cmd, format, profile)
}
