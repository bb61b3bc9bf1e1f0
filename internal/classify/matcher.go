// Package classify provides the node matchers and classifier profiles used to
// configure grouping.
package classify

import (
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"treemerge/internal/tree"
)

// StringMatcher matches node names against suffixes and prefixes. Without
// the conjunction flag a name matches when it has any of the suffixes or any
// of the prefixes; with it, the name needs one of each. An empty list never
// matches, so a conjunctive matcher needs both lists.
type StringMatcher struct {
	suffixes    []string
	prefixes    []string
	conjunction bool
	folder      *Folder
}

// NewStringMatcher returns a matcher for the given suffixes and prefixes. A
// non-nil folder makes the comparison case-insensitive.
func NewStringMatcher(suffixes, prefixes []string, conjunction bool, folder *Folder) *StringMatcher {
	m := &StringMatcher{
		suffixes:    append([]string(nil), suffixes...),
		prefixes:    append([]string(nil), prefixes...),
		conjunction: conjunction,
		folder:      folder,
	}
	if folder != nil {
		for i, s := range m.suffixes {
			m.suffixes[i] = folder.Fold(s)
		}
		for i, p := range m.prefixes {
			m.prefixes[i] = folder.Fold(p)
		}
	}
	return m
}

// Suffixes returns a matcher for names ending in one of suffixes.
func Suffixes(suffixes ...string) *StringMatcher {
	return NewStringMatcher(suffixes, nil, false, nil)
}

func (m *StringMatcher) Match(n tree.Node) bool {
	name := n.Name()
	if m.folder != nil {
		name = m.folder.Fold(name)
	}
	if m.conjunction {
		return m.hasSuffix(name) && m.hasPrefix(name)
	}
	return m.hasSuffix(name) || m.hasPrefix(name)
}

func (m *StringMatcher) hasSuffix(name string) bool {
	for _, s := range m.suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func (m *StringMatcher) hasPrefix(name string) bool {
	for _, p := range m.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func (m *StringMatcher) String() string {
	op := "or"
	if m.conjunction {
		op = "and"
	}
	return fmt.Sprintf("suffix%v %s prefix%v", m.suffixes, op, m.prefixes)
}

type kindMatcher tree.Kind

func (k kindMatcher) Match(n tree.Node) bool { return n.Kind() == tree.Kind(k) }

// HasChildren matches parents, including parents whose child list is empty.
var HasChildren tree.Matcher = kindMatcher(tree.Parent)

// IsLeaf matches nodes that cannot have children.
var IsLeaf tree.Matcher = kindMatcher(tree.Leaf)

type anyMatcher struct{}

func (anyMatcher) Match(tree.Node) bool { return true }
func (anyMatcher) CatchAll() bool       { return true }

// Any matches every node. Put it last in a classifier set so no node is
// left out of the groups.
var Any tree.Matcher = anyMatcher{}

// DefaultFoldCacheSize is the number of folded names a Folder remembers.
const DefaultFoldCacheSize = 4096

// Folder maps strings to a canonical, case-folded NFC form. Results are
// kept in an LRU cache since sibling names repeat a lot.
type Folder struct {
	mu    sync.Mutex
	caser cases.Caser
	cache *lru.Cache[string, string]
}

// NewFolder returns a Folder remembering up to size names.
func NewFolder(size int) (*Folder, error) {
	if size <= 0 {
		size = DefaultFoldCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create fold cache: %w", err)
	}
	return &Folder{caser: cases.Fold(), cache: cache}, nil
}

// Fold returns the folded form of s.
func (f *Folder) Fold(s string) string {
	if folded, ok := f.cache.Get(s); ok {
		return folded
	}

	f.mu.Lock()
	folded := f.caser.String(norm.NFC.String(s))
	f.mu.Unlock()

	f.cache.Add(s, folded)
	return folded
}

// Len returns the number of cached names.
func (f *Folder) Len() int { return f.cache.Len() }
