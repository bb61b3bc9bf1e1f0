// Package snapshot stores node trees as JSON documents so a tree can be
// summarized away from the machine it was read on.
//
// A document is a nested object:
//
//	{"name": "root", "children": [{"name": "a.txt"}, {"name": "empty", "children": []}]}
//
// A missing children field marks a leaf, an empty list marks a parent with
// no children. Files ending in .zst are zstd compressed.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"treemerge/internal/errors"
	"treemerge/internal/tree"
)

// CompressedExt is the file extension that selects zstd compression.
const CompressedExt = ".zst"

// Document is one node of a snapshot. A nil Children slice marks a leaf,
// a non-nil empty one a parent without children.
type Document struct {
	Name     string
	Children []*Document
}

// Leaf reports whether the document describes a leaf.
func (d *Document) Leaf() bool { return d.Children == nil }

type wireDocument struct {
	Name     string       `json:"name"`
	Children *[]*Document `json:"children,omitempty"`
}

func (d *Document) MarshalJSON() ([]byte, error) {
	w := wireDocument{Name: d.Name}
	if !d.Leaf() {
		w.Children = &d.Children
	}
	return json.Marshal(w)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Name == "" {
		return fmt.Errorf("snapshot node without a name")
	}
	d.Name = w.Name
	d.Children = nil
	if w.Children != nil {
		for _, c := range *w.Children {
			if c == nil {
				return fmt.Errorf("snapshot node %q has a null child", w.Name)
			}
		}
		d.Children = append([]*Document{}, *w.Children...)
	}
	return nil
}

// Capture copies n and everything below it into a document.
func Capture(n tree.Node) (*Document, error) {
	doc := &Document{Name: n.Name()}
	if n.Kind() == tree.Leaf {
		return doc, nil
	}

	children, err := n.Children()
	if err != nil {
		return nil, err
	}
	doc.Children = make([]*Document, 0, len(children))
	for _, c := range children {
		cd, err := Capture(c)
		if err != nil {
			return nil, err
		}
		doc.Children = append(doc.Children, cd)
	}
	return doc, nil
}

// Tree rebuilds the nodes described by doc.
func (d *Document) Tree() tree.Node {
	if d.Leaf() {
		return tree.NewLeaf(d.Name)
	}
	children := make([]tree.Node, len(d.Children))
	for i, c := range d.Children {
		children[i] = c.Tree()
	}
	return tree.NewParent(d.Name, children...)
}

// Write encodes doc to w, compressing it when compress is set.
func Write(w io.Writer, doc *Document, compress bool) (err error) {
	if compress {
		enc, zerr := zstd.NewWriter(w)
		if zerr != nil {
			return fmt.Errorf("failed to create zstd writer: %w", zerr)
		}
		defer func() {
			if cerr := enc.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to flush zstd stream: %w", cerr)
			}
		}()
		w = enc
	}

	e := json.NewEncoder(w)
	e.SetEscapeHTML(false)
	if err := e.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// Read decodes a document from r.
func Read(r io.Reader, compressed bool) (*Document, error) {
	if compressed {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(errors.SourceRead, "failed to open zstd stream", err)
		}
		defer dec.Close()
		r = dec
	}

	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.SourceRead, "failed to decode snapshot", err)
	}
	return &doc, nil
}

// IsCompressed reports whether path names a compressed snapshot.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), CompressedExt)
}

// WriteFile writes doc to path, compressed when path ends in .zst.
func WriteFile(path string, doc *Document) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Write(bw, doc, IsCompressed(path)); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadFile reads the snapshot at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.SourceUnavailable, fmt.Sprintf("cannot open snapshot %s", path), err)
	}
	defer f.Close()
	return Read(bufio.NewReader(f), IsCompressed(path))
}
