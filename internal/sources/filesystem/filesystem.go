// Package filesystem exposes a directory tree as tree nodes. Directories are
// parents, everything else (symlinks included) is a leaf. Children are read
// lazily, sorted by name and kept once read.
package filesystem

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"treemerge/internal/errors"
	"treemerge/internal/slogutil"
	"treemerge/internal/tree"
)

// DefaultIgnore lists names skipped unless the caller overrides the set.
var DefaultIgnore = []string{".git"}

// Source reads nodes from a billy filesystem.
type Source struct {
	fs     billy.Filesystem
	name   string
	ignore map[string]bool
	logger *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithIgnore replaces the ignored names.
func WithIgnore(names ...string) Option {
	return func(s *Source) {
		s.ignore = make(map[string]bool, len(names))
		for _, n := range names {
			s.ignore[n] = true
		}
	}
}

// WithLogger sets the logger used for directory reads.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// New returns a source over fs. name is the name given to the root node.
func New(fs billy.Filesystem, name string, opts ...Option) *Source {
	s := &Source{
		fs:     fs,
		name:   name,
		logger: slogutil.NewDiscardLogger(),
	}
	WithIgnore(DefaultIgnore...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns a source rooted at the directory path on the local disk.
func Open(path string, opts ...Option) (*Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.SourceUnavailable, fmt.Sprintf("cannot resolve %s", path), err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(errors.SourceUnavailable, fmt.Sprintf("cannot open %s", path), err)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.SourceUnavailable, fmt.Sprintf("%s is not a directory", path))
	}
	return New(osfs.New(abs), filepath.Base(abs), opts...), nil
}

// Root returns the root directory node.
func (s *Source) Root() *Entry {
	return &Entry{id: tree.NextID(), source: s, name: s.name, kind: tree.Parent}
}

// Entry is one file or directory of a Source.
type Entry struct {
	id     tree.ID
	source *Source
	parent *Entry
	name   string
	path   string
	kind   tree.Kind

	mu       sync.Mutex
	loaded   bool
	children []tree.Node
}

func (e *Entry) ID() tree.ID     { return e.id }
func (e *Entry) Name() string    { return e.name }
func (e *Entry) Kind() tree.Kind { return e.kind }

// Parent returns the containing directory, nil for the root.
func (e *Entry) Parent() *Entry { return e.parent }

// Path returns the slash separated path below the source root.
func (e *Entry) Path() string { return filepath.ToSlash(e.path) }

// Children reads the directory on first use. A failed read is not cached,
// so a later call retries it.
func (e *Entry) Children() ([]tree.Node, error) {
	if e.kind == tree.Leaf {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded {
		return e.children, nil
	}

	infos, err := e.source.fs.ReadDir(e.path)
	if err != nil {
		return nil, errors.Wrap(errors.SourceRead, fmt.Sprintf("failed to read directory %q", e.Path()), err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	children := make([]tree.Node, 0, len(infos))
	for _, info := range infos {
		if e.source.ignore[info.Name()] {
			continue
		}
		kind := tree.Leaf
		if info.IsDir() && info.Mode()&os.ModeSymlink == 0 {
			kind = tree.Parent
		}
		children = append(children, &Entry{
			id:     tree.NextID(),
			source: e.source,
			parent: e,
			name:   info.Name(),
			path:   e.source.fs.Join(e.path, info.Name()),
			kind:   kind,
		})
	}

	e.source.logger.Debug("Read directory",
		"path", e.Path(),
		"entries", len(children),
		"skipped", len(infos)-len(children),
	)

	e.children = children
	e.loaded = true
	return children, nil
}
