package snapshot_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"treemerge/internal/errors"
	"treemerge/internal/sources/snapshot"
	"treemerge/internal/testutil"
	"treemerge/internal/tree"
)

func TestDocument_JSON(t *testing.T) {
	root := testutil.Dir("root", testutil.Leaf("a.txt"), testutil.Dir("empty"))
	doc, err := snapshot.Capture(root)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	var buf bytes.Buffer
	if err := snapshot.Write(&buf, doc, false); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := `{"name":"root","children":[{"name":"a.txt"},{"name":"empty","children":[]}]}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("Write() = %s, want %s", got, want)
	}

	back, err := snapshot.Read(&buf, false)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !back.Children[0].Leaf() || back.Children[1].Leaf() {
		t.Errorf("leaf flags lost: a.txt leaf=%v, empty leaf=%v", back.Children[0].Leaf(), back.Children[1].Leaf())
	}
	if diff := cmp.Diff(doc, back); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_Tree(t *testing.T) {
	doc := &snapshot.Document{Name: "root", Children: []*snapshot.Document{
		{Name: "a.txt"},
		{Name: "empty", Children: []*snapshot.Document{}},
	}}

	root := doc.Tree()
	children := testutil.Children(t, root)
	if len(children) != 2 {
		t.Fatalf("len(children) = %d, want 2", len(children))
	}
	if children[0].Kind() != tree.Leaf || children[1].Kind() != tree.Parent {
		t.Errorf("kinds = %v, %v, want leaf, parent", children[0].Kind(), children[1].Kind())
	}
	if got := testutil.Children(t, children[1]); len(got) != 0 {
		t.Errorf("empty parent has %d children", len(got))
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	doc, err := snapshot.Capture(testutil.ArchiveTree())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	for _, name := range []string{"tree.json", "tree.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := snapshot.WriteFile(path, doc); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			isJSON := strings.HasPrefix(string(raw), `{"name":"root"`)
			if isJSON == snapshot.IsCompressed(path) {
				t.Errorf("%s: plain JSON = %v, compressed = %v", name, isJSON, snapshot.IsCompressed(path))
			}

			back, err := snapshot.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if diff := cmp.Diff(doc, back); diff != "" {
				t.Errorf("ReadFile() mismatch (-want +got):\n%s", diff)
			}

			count, err := tree.Count(back.Tree())
			if err != nil || count != 53 {
				t.Errorf("Count(Tree()) = %d, %v, want 53", count, err)
			}
		})
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		compressed bool
	}{
		{"not json", "nope", false},
		{"missing name", `{"children":[]}`, false},
		{"nested missing name", `{"name":"r","children":[{}]}`, false},
		{"null document", "null", false},
		{"null child", `{"name":"r","children":[null]}`, false},
		{"nested null child", `{"name":"r","children":[{"name":"d","children":[{"name":"a"},null]}]}`, false},
		{"not zstd", `{"name":"r"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := snapshot.Read(strings.NewReader(tt.input), tt.compressed)
			if !errors.IsCode(err, errors.SourceRead) {
				t.Errorf("Read() error = %v, want code %v", err, errors.SourceRead)
			}
		})
	}

	_, err := snapshot.ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.IsCode(err, errors.SourceUnavailable) {
		t.Errorf("ReadFile() error = %v, want code %v", err, errors.SourceUnavailable)
	}
}
