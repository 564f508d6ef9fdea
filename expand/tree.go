// Package expand merges navigation paths into the tree rendered as $expand.
package expand

// Entry is one navigation path with the fields selected at its end.
type Entry struct {
	Segments []string
	Select   []string
}

// Node is one navigation segment of the expand tree.
type Node struct {
	Name     string
	Select   []string
	Children []*Node

	index    map[string]*Node
	selected map[string]bool
}

// Child returns the child named name, or nil.
func (n *Node) Child(name string) *Node {
	return n.index[name]
}

func (n *Node) child(name string) *Node {
	if c, ok := n.index[name]; ok {
		return c
	}
	c := newNode(name)
	if n.index == nil {
		n.index = make(map[string]*Node)
	}
	n.index[name] = c
	n.Children = append(n.Children, c)
	return c
}

func (n *Node) addSelect(fields []string) {
	for _, f := range fields {
		if f == "" || n.selected[f] {
			continue
		}
		if n.selected == nil {
			n.selected = make(map[string]bool)
		}
		n.selected[f] = true
		n.Select = append(n.Select, f)
	}
}

func newNode(name string) *Node {
	return &Node{Name: name}
}

// Build merges entries into a forest of top-level nodes.
// Entries sharing a path prefix share nodes; select fields accumulate on
// the node at the end of each entry in first-seen order without
// duplicates. Top-level nodes keep first-seen order.
func Build(entries []Entry) []*Node {
	root := newNode("")
	for _, e := range entries {
		if len(e.Segments) == 0 {
			continue
		}
		n := root
		for _, seg := range e.Segments {
			n = n.child(seg)
		}
		n.addSelect(e.Select)
	}
	return root.Children
}
