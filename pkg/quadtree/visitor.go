package quadtree

// Visitor receives a read-only pre-order walk of a tree.
type Visitor interface {
	// VisitNode is called for an internal node before its children.
	VisitNode(t *Tree)
	// VisitLeafNode is called for a leaf with the indices it holds, before VisitElement
	// is called for each of them.
	VisitLeafNode(t *Tree, indices []int)
	VisitElement(index int)
}

// Visit walks the tree. Children are visited top-left, top-right, bottom-left,
// bottom-right.
func (t *Tree) Visit(v Visitor) {
	if t.children == nil {
		v.VisitLeafNode(t, t.indices)
		for _, index := range t.indices {
			v.VisitElement(index)
		}
		return
	}
	v.VisitNode(t)
	for _, child := range t.children {
		child.Visit(v)
	}
}
