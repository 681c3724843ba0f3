package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText returns the verbatim source of a node.
func nodeText(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return string(src[node.StartByte():node.EndByte()])
}

// nodeName returns the text of the node's "name" field, or "" when absent.
func nodeName(node *sitter.Node, src []byte) string {
	return nodeText(node.ChildByFieldName("name"), src)
}

// namedChildren returns the named children of a node in order.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if child := node.NamedChild(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// walkTree visits nodes depth-first. Returning false skips the node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	walkTree(root, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return false
		}
		return n.HasError()
	})
	return found
}
