package tree

// Filtered is a view of a node that hides the children rejected by a
// predicate. A hidden child takes its whole subtree with it.
type Filtered struct {
	id        ID
	base      Node
	keep      func(Node) bool
	recursive bool

	children []Node
	loaded   bool
}

// Filter wraps n so that only children accepted by keep are visible. With
// recursive set, keep applies at every depth; otherwise only n's direct
// children are filtered and deeper levels are shown unchanged.
//
// The view has its own ID, distinct from n's.
func Filter(n Node, keep func(Node) bool, recursive bool) *Filtered {
	return &Filtered{
		id:        NextID(),
		base:      n,
		keep:      keep,
		recursive: recursive,
	}
}

// Base returns the wrapped node.
func (f *Filtered) Base() Node { return f.base }

func (f *Filtered) ID() ID         { return f.id }
func (f *Filtered) Name() string   { return f.base.Name() }
func (f *Filtered) Kind() Kind     { return f.base.Kind() }
func (f *Filtered) String() string { return f.base.Name() }

// Children returns the wrapped node's accepted children, each wrapped in
// turn. The wrappers are created once so their IDs stay stable.
func (f *Filtered) Children() ([]Node, error) {
	if f.base.Kind() != Parent {
		return nil, nil
	}
	if f.loaded {
		return f.children, nil
	}

	children, err := f.base.Children()
	if err != nil {
		return nil, err
	}

	next := f.keep
	if !f.recursive {
		next = keepAll
	}

	visible := make([]Node, 0, len(children))
	for _, child := range children {
		if !f.keep(child) {
			continue
		}
		visible = append(visible, Filter(child, next, f.recursive))
	}

	f.children = visible
	f.loaded = true
	return visible, nil
}

func keepAll(Node) bool { return true }
