package index

import (
	"fmt"

	"github.com/disiqueira/gotree/v3"
)

// Render draws the tree structure, one line per node, for debugging output.
// Each node shows its key and height; children are marked L or R.
func (t *Tree[V]) Render(label string) string {
	root := gotree.New(fmt.Sprintf("%s (%d keys, height %d)", label, t.size, t.Height()))
	renderNode(root, t.root, "")
	return root.Print()
}

func renderNode[V any](parent gotree.Tree, n *node[V], side string) {
	if n == nil {
		return
	}
	child := parent.Add(fmt.Sprintf("%s%q h=%d", side, n.key, n.height))
	renderNode(child, n.left, "L ")
	renderNode(child, n.right, "R ")
}
