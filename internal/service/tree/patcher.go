package tree

import "cartable/internal/domain/models/tree"

// ReplaceChildren returns a tree in which the node with id has children as
// its children. Only the nodes on the path from root to the target are copied;
// every other subtree is shared with the input. When id is not found the
// input root is returned unchanged with ok == false.
func ReplaceChildren(root *tree.Node, id string, children []*tree.Node) (*tree.Node, bool) {
	if root == nil {
		return nil, false
	}
	if root.ID == id {
		patched := *root
		patched.Children = children
		return &patched, true
	}

	for i, child := range root.Children {
		replaced, ok := ReplaceChildren(child, id, children)
		if !ok {
			continue
		}
		patched := *root
		patched.Children = make([]*tree.Node, len(root.Children))
		copy(patched.Children, root.Children)
		patched.Children[i] = replaced
		return &patched, true
	}
	return root, false
}

// FindNode returns the node with id, or nil. Depth-first, first match wins.
func FindNode(root *tree.Node, id string) *tree.Node {
	if root == nil {
		return nil
	}
	if root.ID == id {
		return root
	}
	for _, child := range root.Children {
		if found := FindNode(child, id); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every node depth-first with its depth (root is 0).
// Returning false from fn skips the node's children.
func Walk(root *tree.Node, fn func(n *tree.Node, depth int) bool) {
	walk(root, 0, fn)
}

func walk(n *tree.Node, depth int, fn func(*tree.Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		walk(child, depth+1, fn)
	}
}
