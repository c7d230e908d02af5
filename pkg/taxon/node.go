package taxon

import (
	"errors"
	"fmt"
)

// RootName is the name of the root of every tree.
const RootName = "root"

var (
	// ErrEmptyName is returned by [Node.AddChild] when the name is empty.
	// Empty lineage segments are skipped, never turned into nodes.
	ErrEmptyName = errors.New("taxon name must not be empty")

	// ErrDuplicateChild is returned by [Node.AddChild] when the node already
	// has a child with the same name. Callers check [Node.HasChild] first.
	ErrDuplicateChild = errors.New("duplicate child taxon")
)

// QueryRef attributes one query to a node: the query identifier and the
// byte offset of its record in the source report.
type QueryRef struct {
	ID     string
	Offset int64
}

// String formats the reference as "id\toffset", the form used in reports.
func (q QueryRef) String() string {
	return fmt.Sprintf("%s\t%d", q.ID, q.Offset)
}

// Node is one taxon in the tree.
//
// Count is cumulative: it is the total weight of the insertions whose
// lineage passes through or ends at this node. Queries holds only the
// insertions that ended here.
type Node struct {
	Name     string
	Rank     string
	Count    int
	Children []*Node
	Queries  []QueryRef

	parent *Node
}

// NewRoot returns an empty root node.
func NewRoot() *Node {
	return &Node{Name: RootName}
}

// Parent returns the node's parent, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// HasChild reports whether n has a direct child with exactly this name.
func (n *Node) HasChild(name string) bool {
	_, ok := n.Child(name)
	return ok
}

// Child returns the direct child with the given name.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// AddChild appends a new child and returns it. It fails with
// [ErrDuplicateChild] if a child of that name already exists.
func (n *Node) AddChild(name, rank string) (*Node, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if n.HasChild(name) {
		return nil, fmt.Errorf("%w: %q under %q", ErrDuplicateChild, name, n.Name)
	}
	c := &Node{Name: name, Rank: rank, parent: n}
	n.Children = append(n.Children, c)
	return c, nil
}

// AddQuery records a query whose lineage ends at n.
func (n *Node) AddQuery(id string, offset int64) {
	n.Queries = append(n.Queries, QueryRef{ID: id, Offset: offset})
}

// Label returns "name (rank)", or just the name when the rank is unknown.
func (n *Node) Label() string {
	if n.Rank == "" {
		return n.Name
	}
	return n.Name + " (" + n.Rank + ")"
}

// Path returns the names from the root's first child down to n.
func (n *Node) Path() []string {
	var path []string
	for c := n; c != nil && c.parent != nil; c = c.parent {
		path = append(path, c.Name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Adopt sets the parent links of n's subtree. Decoders that build nodes
// directly call it once on the root.
func (n *Node) Adopt() {
	for _, c := range n.Children {
		c.parent = n
		c.Adopt()
	}
}
