package dom

import (
	"errors"

	"github.com/yaklabco/html5bridge/pkg/htmlparse"
)

// SkipChildren is returned by a WalkFunc to leave the subtree below the current node
// unvisited. Walk itself never returns it.
//
//nolint:errname,revive,staticcheck // named like fs.SkipDir
var SkipChildren = errors.New("skip children")

// WalkFunc visits n, which sits depth levels below the node the walk started at.
type WalkFunc func(n *Node, depth int) error

// Walk visits root and its descendants in document order.
func Walk(root *Node, fn WalkFunc) error {
	if root == nil {
		return nil
	}
	return walk(root, 0, fn)
}

func walk(n *Node, depth int, fn WalkFunc) error {
	if err := fn(n, depth); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	for child := n.FirstChild; child != nil; child = child.Next {
		if err := walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Elements returns the HTML elements named name under root, in document order.
// SVG and MathML subtrees are not searched.
func Elements(root *Node, name string) []*Node {
	var found []*Node
	//nolint:errcheck // the visitor only returns SkipChildren
	Walk(root, func(n *Node, _ int) error {
		if n.Kind != NodeElement {
			return nil
		}
		switch n.Namespace {
		case htmlparse.NamespaceSVG, htmlparse.NamespaceMathML:
			return SkipChildren
		}
		if n.Name == name {
			found = append(found, n)
		}
		return nil
	})
	return found
}
