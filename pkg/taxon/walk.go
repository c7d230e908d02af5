package taxon

// Walk visits n and its descendants in pre-order. Children are visited in
// insertion order. Returning false from fn skips the node's subtree.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns every node of the subtree named name, in pre-order.
func (n *Node) Find(name string) []*Node {
	var found []*Node
	n.Walk(func(c *Node, _ int) bool {
		if c.Name == name {
			found = append(found, c)
		}
		return true
	})
	return found
}

// Members returns the queries attributed anywhere in n's subtree, in
// pre-order.
func (n *Node) Members() []QueryRef {
	var refs []QueryRef
	n.Walk(func(c *Node, _ int) bool {
		refs = append(refs, c.Queries...)
		return true
	})
	return refs
}

// Size returns the number of nodes in n's subtree, n included.
func (n *Node) Size() int {
	size := 0
	n.Walk(func(*Node, int) bool {
		size++
		return true
	})
	return size
}

// Depth returns the number of edges on the longest path below n.
func (n *Node) Depth() int {
	deepest := 0
	n.Walk(func(_ *Node, d int) bool {
		if d > deepest {
			deepest = d
		}
		return true
	})
	return deepest
}

// LCA returns the lowest common ancestor of every query in the tree: the
// last node of the chain of single children starting at the root. It is
// the root itself when the root has zero or several children.
func (t *Tree) LCA() *Node {
	n := t.Root
	for len(n.Children) == 1 {
		n = n.Children[0]
	}
	return n
}

// Attributions returns the number of query attributions held by the tree.
func (t *Tree) Attributions() int {
	total := 0
	t.Root.Walk(func(n *Node, _ int) bool {
		total += len(n.Queries)
		return true
	})
	return total
}
