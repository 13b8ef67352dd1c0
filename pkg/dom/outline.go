package dom

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/yaklabco/html5bridge/pkg/htmlparse"
)

// Outline renders the document's children one node per line, each line prefixed with
// "| " and indented two spaces per level. Attributes follow their element, sorted by
// name, one level deeper.
func (d *Document) Outline() string {
	var b strings.Builder
	for child := d.root.FirstChild; child != nil; child = child.Next {
		//nolint:errcheck // the visitor never fails
		Walk(child, func(n *Node, depth int) error {
			writeOutline(&b, n, depth)
			return nil
		})
	}
	return b.String()
}

func writeOutline(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "| %s%s\n", indent, label(n))

	if n.Kind == NodeElement {
		for _, a := range sortedAttributes(n.Attributes) {
			fmt.Fprintf(b, "| %s  %s=%q\n", indent, attrName(a), a.Value)
		}
	}
}

// Dump renders the whole tree, document node included, as an ASCII tree.
func (d *Document) Dump() string {
	tree := treeprint.NewWithRoot(label(d.root))
	for child := d.root.FirstChild; child != nil; child = child.Next {
		addBranch(tree, child)
	}
	return tree.String()
}

func addBranch(tree treeprint.Tree, n *Node) {
	if !n.HasChildren() {
		tree.AddNode(label(n))
		return
	}
	branch := tree.AddBranch(label(n))
	for child := n.FirstChild; child != nil; child = child.Next {
		addBranch(branch, child)
	}
}

func label(n *Node) string {
	switch n.Kind {
	case NodeDocument:
		return "#document"
	case NodeDoctype:
		if n.PublicID == nil && n.SystemID == nil {
			return fmt.Sprintf("<!DOCTYPE %s>", n.Name)
		}
		return fmt.Sprintf("<!DOCTYPE %s %q %q>", n.Name, deref(n.PublicID), deref(n.SystemID))
	case NodeComment:
		return fmt.Sprintf("<!-- %s -->", n.Data)
	case NodeText:
		return fmt.Sprintf("%q", n.Data)
	default:
		switch n.Namespace {
		case htmlparse.NamespaceSVG:
			return fmt.Sprintf("<svg %s>", n.Name)
		case htmlparse.NamespaceMathML:
			return fmt.Sprintf("<math %s>", n.Name)
		default:
			return fmt.Sprintf("<%s>", n.Name)
		}
	}
}

func attrName(a htmlparse.Attribute) string {
	switch a.Namespace {
	case htmlparse.NamespaceXLink:
		return "xlink " + a.Name
	case htmlparse.NamespaceXML:
		return "xml " + a.Name
	case htmlparse.NamespaceXMLNS:
		return "xmlns " + a.Name
	default:
		return a.Name
	}
}

func sortedAttributes(attrs []htmlparse.Attribute) []htmlparse.Attribute {
	sorted := slices.Clone(attrs)
	slices.SortStableFunc(sorted, func(a, b htmlparse.Attribute) int {
		return strings.Compare(attrName(a), attrName(b))
	})
	return sorted
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
