package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"treemerge/internal/hashing"
	"treemerge/internal/merge"
	"treemerge/internal/render"
	"treemerge/internal/testutil"
	"treemerge/internal/tree"
)

func sortedMerges(t *testing.T, g *tree.Grouper, root tree.Node) []*merge.NodeMerge {
	t.Helper()

	merger := merge.New(hashing.New(g))
	merges, err := merger.SeparateAndMerge(testutil.Children(t, root))
	if err != nil {
		t.Fatalf("SeparateAndMerge() error = %v", err)
	}
	merge.Sort(merges)
	return merges
}

func TestTextBuilder_Golden(t *testing.T) {
	g := tree.NewGrouper(testutil.ArchiveRules(t))
	merges := sortedMerges(t, g, testutil.ArchiveTree())

	b := render.NewTextBuilder()
	if err := render.NewWalker(b, g).AddAll(merges); err != nil {
		t.Fatalf("AddAll() error = %v", err)
	}

	testutil.CompareGolden(t, "archive_tree", []byte(b.String()))
}

func TestTextBuilder_TwoEqualDirectories(t *testing.T) {
	dir := func(name string) tree.Node {
		return testutil.Dir(name,
			testutil.Leaf("a.zip"),
			testutil.Dir("pics",
				testutil.Leaf("1.png"),
				testutil.Leaf("2.jpg"),
				testutil.Leaf("notes.txt"),
			),
		)
	}
	root := testutil.Dir("root", dir("x"), dir("y"))

	g := tree.NewGrouper(testutil.ArchiveRules(t))
	merges := sortedMerges(t, g, root)
	if len(merges) != 1 || merges[0].MergedCount() != 2 {
		t.Fatalf("merges = %d, want one merge of 2 nodes", len(merges))
	}

	b := render.NewTextBuilder()
	if err := render.NewWalker(b, g).AddMerge(merges[0], 1); err != nil {
		t.Fatalf("AddMerge() error = %v", err)
	}

	want := "• M0-1/1, 2×DIRECTORY | Stats for children: (ARCHIVE:⟦1,1⟧) (DIRECTORY:⟦1,1⟧); 4 children in the 2 non-leaf nodes were merged as follows:\n" +
		"  • M1-1/2, 2×ARCHIVE\n" +
		"  • M1-2/2, 2×DIRECTORY | Stats for children: (IMAGE:⟦2,2⟧) (TEXT:⟦1,1⟧); 6 children in the 2 non-leaf nodes were merged as follows:\n" +
		"    • M2-1/1, 2×TEXT, 4×IMAGE\n"
	if diff := testutil.Diff(want, b.String()); diff != "" {
		t.Errorf("TextBuilder output mismatch:\n%s", diff)
	}
}

func TestTextBuilder_ChildlessParents(t *testing.T) {
	root := testutil.Dir("root", testutil.Dir("e1"), testutil.Dir("e2"), testutil.Leaf("a.txt"))

	g := tree.NewGrouper(testutil.ArchiveRules(t))
	merges := sortedMerges(t, g, root)

	b := render.NewTextBuilder()
	if err := render.NewWalker(b, g).AddAll(merges); err != nil {
		t.Fatalf("AddAll() error = %v", err)
	}

	want := "• M0-1/1, 2×DIRECTORY, 1×TEXT; 0 children in the 2 non-leaf nodes were merged as follows:\n"
	if got := b.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestFormatAverage(t *testing.T) {
	tests := []struct {
		avg  float32
		want string
	}{
		{3.5, "3.5"},
		{3, "3.0"},
		{10.0 / 3.0, "3.3333333"},
		{0.25, "0.25"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := render.FormatAverage(tt.avg); got != tt.want {
				t.Errorf("FormatAverage(%v) = %q, want %q", tt.avg, got, tt.want)
			}
		})
	}
}

func TestMergeName(t *testing.T) {
	if got := render.MergeName(2, 3, 1); got != "M1-2/3" {
		t.Errorf("MergeName(2, 3, 1) = %q, want M1-2/3", got)
	}
}

func TestReportBuilder(t *testing.T) {
	g := tree.NewGrouper(testutil.ArchiveRules(t))
	merges := sortedMerges(t, g, testutil.ArchiveTree())

	b := render.NewReportBuilder()
	if err := render.NewWalker(b, g).AddAll(merges); err != nil {
		t.Fatalf("AddAll() error = %v", err)
	}
	report := b.Report()

	if len(report.Merges) != 3 {
		t.Fatalf("len(Merges) = %d, want 3", len(report.Merges))
	}

	want := &render.MergeReport{
		Name:   "M0-3/3",
		Groups: []render.GroupCount{{Name: "DIRECTORY", Count: 4}},
		Stats: []render.StatReport{
			{Name: "ARCHIVE", Min: 1, Max: 1, Sum: 4, Groups: 4, Average: 1},
			{Name: "DIRECTORY", Min: 1, Max: 1, Sum: 4, Groups: 4, Average: 1},
		},
		ChildCount:   8,
		NonLeafCount: 4,
		Submerges: []*render.MergeReport{
			{
				Name:   "M1-1/2",
				Groups: []render.GroupCount{{Name: "ARCHIVE", Count: 4}},
			},
			{
				Name:   "M1-2/2",
				Groups: []render.GroupCount{{Name: "DIRECTORY", Count: 4}},
				Stats: []render.StatReport{
					{Name: "IMAGE", Min: 2, Max: 5, Sum: 14, Groups: 4, Average: 3.5},
					{Name: "TEXT", Min: 1, Max: 1, Sum: 4, Groups: 4, Average: 1},
				},
				ChildCount:   18,
				NonLeafCount: 4,
				Submerges: []*render.MergeReport{
					{
						Name: "M2-1/1",
						Groups: []render.GroupCount{
							{Name: "TEXT", Count: 4},
							{Name: "IMAGE", Count: 14},
						},
					},
				},
			},
		},
	}

	if diff := cmp.Diff(want, report.Merges[2]); diff != "" {
		t.Errorf("Merges[2] mismatch (-want +got):\n%s", diff)
	}
}
