package quadtree

// Stats describes the shape of a tree.
type Stats struct {
	Nodes       int
	Leaves      int
	EmptyLeaves int
	MaxDepth    int
	MaxLeafLen  int
}

// Stats walks the tree and counts its nodes. The root has depth 0.
func (t *Tree) Stats() Stats {
	var s Stats
	t.collect(&s, 0)
	return s
}

func (t *Tree) collect(s *Stats, depth int) {
	s.Nodes++
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	if t.children == nil {
		s.Leaves++
		if len(t.indices) == 0 {
			s.EmptyLeaves++
		}
		if len(t.indices) > s.MaxLeafLen {
			s.MaxLeafLen = len(t.indices)
		}
		return
	}
	for _, child := range t.children {
		child.collect(s, depth+1)
	}
}
