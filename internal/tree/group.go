package tree

import (
	"cmp"
	"fmt"
)

// Group holds the siblings that matched one classifier during a single
// grouping pass.
type Group struct {
	Classifier *Classifier
	Members    []Node
}

// Len returns the member count.
func (g *Group) Len() int { return len(g.Members) }

// Compare orders groups by member count, smallest first.
func (g *Group) Compare(other *Group) int {
	return cmp.Compare(len(g.Members), len(other.Members))
}

func (g *Group) String() string {
	return fmt.Sprintf("%s(%d)", g.Classifier.Name(), len(g.Members))
}
