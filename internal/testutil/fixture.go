// Package testutil provides trees, classifiers and golden file helpers
// shared by the package tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"treemerge/internal/tree"
)

// Leaf and Dir shorten fixture definitions.
func Leaf(name string) tree.Node { return tree.NewLeaf(name) }

func Dir(name string, children ...tree.Node) tree.Node {
	return tree.NewParent(name, children...)
}

// ArchiveTree returns eight directories below a root. Each holds one zip
// archive and a subdirectory with one text file and between zero and five
// images:
//
//	dir A, dir B1, dir B2: 0 images
//	dir C, dir D:          1 image
//	dir E .. dir H:        2 .. 5 images
func ArchiveTree() *tree.Entry {
	sub := func(name string, images int) tree.Node {
		var children []tree.Node
		for i := 0; i < images; i++ {
			children = append(children, Leaf("image.png"))
		}
		children = append(children, Leaf("text.txt"))
		return Dir(name, children...)
	}
	dir := func(name, subName string, images int) tree.Node {
		return Dir(name, Leaf("zip.zip"), sub(subName, images))
	}

	return tree.NewParent("root",
		dir("dir A", "dir AA", 0),
		dir("dir B1", "dir BA", 0),
		dir("dir B2", "dir BA", 0),
		dir("dir C", "dir CA", 1),
		dir("dir D", "dir DA", 1),
		dir("dir E", "dir EA", 2),
		dir("dir F", "dir FA", 3),
		dir("dir G", "dir GA", 4),
		dir("dir H", "dir HA", 5),
	)
}

// Suffix matches nodes whose name ends with one of the suffixes.
func Suffix(suffixes ...string) tree.Matcher {
	return tree.MatcherFunc(func(n tree.Node) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(n.Name(), s) {
				return true
			}
		}
		return false
	})
}

type catchAll struct{}

func (catchAll) Match(tree.Node) bool { return true }
func (catchAll) CatchAll() bool       { return true }

// ArchiveRules returns the classifiers archive, image, text, dir and other,
// in that priority order, displayed in upper case. Images are hashed with
// NoneOneMultiple, everything else with ExactCount.
func ArchiveRules(t testing.TB) *tree.ClassifierSet {
	t.Helper()

	set, err := tree.NewClassifierSet(
		tree.Rule{Classifier: tree.NewClassifier("archive", Suffix(".zip")), Display: "ARCHIVE"},
		tree.Rule{
			Classifier: tree.NewClassifier("image", Suffix(".jpeg", ".jpg", ".png", ".PNG", ".JPEG", ".JPG")),
			Display:    "IMAGE",
			Approach:   tree.NoneOneMultiple,
		},
		tree.Rule{Classifier: tree.NewClassifier("text", Suffix(".txt")), Display: "TEXT"},
		tree.Rule{
			Classifier: tree.NewClassifier("dir", tree.MatcherFunc(func(n tree.Node) bool { return n.Kind() == tree.Parent })),
			Display:    "DIRECTORY",
		},
		tree.Rule{Classifier: tree.NewClassifier("other", catchAll{}), Display: "OTHER"},
	)
	if err != nil {
		t.Fatalf("NewClassifierSet() error = %v", err)
	}
	return set
}

// Children returns the children of n, failing the test on error.
func Children(t testing.TB, n tree.Node) []tree.Node {
	t.Helper()

	children, err := n.Children()
	if err != nil {
		t.Fatalf("Children(%s) error = %v", n.Name(), err)
	}
	return children
}

// FixturesRoot returns the absolute path to testdata/fixtures/ at the
// project root.
func FixturesRoot(t testing.TB) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}

	// Navigate from internal/testutil to project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	root := filepath.Join(projectRoot, "testdata", "fixtures")

	if _, err := os.Stat(root); os.IsNotExist(err) {
		t.Fatalf("Fixtures root not found: %s", root)
	}
	return root
}

// Fixture returns the path of a directory below testdata/fixtures/.
func Fixture(t testing.TB, name string) string {
	t.Helper()

	dir := filepath.Join(FixturesRoot(t), name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Fatalf("Fixture directory not found: %s", dir)
	}
	return dir
}
