package doctree

// DocTree is the heading hierarchy of an extracted document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     `json:"title"`
	Level    int        `json:"level"`
	Path     string     `json:"path,omitempty"`
	Page     int        `json:"page"`
	Children []*DocNode `json:"children,omitempty"`
}

// Count returns the number of nodes in the tree.
func (t *DocTree) Count() int {
	n := 0
	var walk func(nodes []*DocNode)
	walk = func(nodes []*DocNode) {
		for _, c := range nodes {
			n++
			walk(c.Children)
		}
	}
	walk(t.Children)
	return n
}

// Structure builds the heading hierarchy from an extraction. Elements at
// deeper H levels nest under the closest preceding shallower heading.
func Structure(ex *Extraction, title string) *DocTree {
	tree := &DocTree{Title: title}

	type stackEntry struct {
		node  *DocNode
		level int
	}

	root := &DocNode{Title: title}
	stack := []stackEntry{{node: root, level: 0}}

	for _, el := range ex.Elements {
		level, ok := HeadingLevel(el.Path)
		if !ok {
			continue
		}
		text := trimText(el.Text)
		if text == "" {
			continue
		}

		node := &DocNode{Title: text, Level: level, Path: el.Path, Page: el.Page}

		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}

		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, level: level})
	}

	tree.Children = root.Children
	return tree
}
