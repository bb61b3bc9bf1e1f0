package tree

import (
	"treemerge/internal/errors"
)

// Matcher decides whether a node belongs to a classifier.
type Matcher interface {
	Match(n Node) bool
}

// MatcherFunc adapts a plain function to Matcher.
type MatcherFunc func(n Node) bool

func (f MatcherFunc) Match(n Node) bool { return f(n) }

// Classifier is a named node predicate. Classifiers are compared by pointer:
// two classifiers with the same matcher are still different classifiers.
type Classifier struct {
	name    string
	matcher Matcher
}

// NewClassifier returns a classifier called name that accepts the nodes m
// matches.
func NewClassifier(name string, m Matcher) *Classifier {
	return &Classifier{name: name, matcher: m}
}

// Name returns the classifier name. Names are unique within a set and feed
// the classifier's fingerprint.
func (c *Classifier) Name() string { return c.name }

// Matcher returns the underlying predicate.
func (c *Classifier) Matcher() Matcher { return c.matcher }

// Match reports whether n belongs to the classifier.
func (c *Classifier) Match(n Node) bool { return c.matcher.Match(n) }

func (c *Classifier) String() string { return c.name }

// Rule configures one classifier within a set.
type Rule struct {
	Classifier *Classifier
	// Display is the name shown in reports; the classifier name when empty.
	Display  string
	Approach HashApproach
}

// ClassifierSet is an ordered list of classifiers. Earlier classifiers win
// when several match the same node.
type ClassifierSet struct {
	rules []Rule
	index map[*Classifier]int
}

// NewClassifierSet validates rules and returns them as a set, in the order
// given.
func NewClassifierSet(rules ...Rule) (*ClassifierSet, error) {
	s := &ClassifierSet{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[*Classifier]int, len(rules)),
	}
	names := make(map[string]bool, len(rules))

	for i, r := range rules {
		if r.Classifier == nil {
			return nil, errors.Invalidf("rule %d has no classifier", i)
		}
		if r.Classifier.matcher == nil {
			return nil, errors.Invalidf("classifier %q has no matcher", r.Classifier.name)
		}
		if r.Classifier.name == "" {
			return nil, errors.Invalidf("rule %d: classifier name is empty", i)
		}
		if _, dup := s.index[r.Classifier]; dup {
			return nil, errors.Invalidf("classifier %q listed twice", r.Classifier.name)
		}
		if names[r.Classifier.name] {
			return nil, errors.Invalidf("duplicate classifier name %q", r.Classifier.name)
		}
		if _, ok := approachNames[r.Approach]; !ok {
			return nil, errors.Invalidf("classifier %q: unknown hash approach %d", r.Classifier.name, r.Approach)
		}
		if r.Display == "" {
			r.Display = r.Classifier.name
		}
		names[r.Classifier.name] = true
		s.index[r.Classifier] = len(s.rules)
		s.rules = append(s.rules, r)
	}
	return s, nil
}

// Len returns the number of classifiers.
func (s *ClassifierSet) Len() int { return len(s.rules) }

// Classifiers returns the classifiers in priority order.
func (s *ClassifierSet) Classifiers() []*Classifier {
	out := make([]*Classifier, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Classifier
	}
	return out
}

// Rules returns a copy of the configured rules in priority order.
func (s *ClassifierSet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Index returns the priority of c, or -1 when c is not part of the set.
func (s *ClassifierSet) Index(c *Classifier) int {
	if i, ok := s.index[c]; ok {
		return i
	}
	return -1
}

// Display returns the report name of c.
func (s *ClassifierSet) Display(c *Classifier) string {
	if i, ok := s.index[c]; ok {
		return s.rules[i].Display
	}
	return c.Name()
}

// Approach returns the hash approach configured for c. Classifiers outside
// the set use ExactCount.
func (s *ClassifierSet) Approach(c *Classifier) HashApproach {
	if i, ok := s.index[c]; ok {
		return s.rules[i].Approach
	}
	return ExactCount
}

// Lookup finds a classifier by name.
func (s *ClassifierSet) Lookup(name string) (*Classifier, bool) {
	for _, r := range s.rules {
		if r.Classifier.name == name {
			return r.Classifier, true
		}
	}
	return nil, false
}

// catchAll is implemented by matchers that accept every node.
type catchAll interface {
	CatchAll() bool
}

// HasCatchAll reports whether some classifier accepts every node. Without
// one, nodes that match nothing are silently left out of every group.
func (s *ClassifierSet) HasCatchAll() bool {
	for _, r := range s.rules {
		if ca, ok := r.Classifier.matcher.(catchAll); ok && ca.CatchAll() {
			return true
		}
	}
	return false
}
