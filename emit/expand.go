package emit

import (
	"strings"

	"github.com/hugr-lab/odata-go/expand"
)

// Expand renders a merged expand forest as an $expand value.
//
// A node without selected fields flattens into its only child
// (addresses/city/country); otherwise its children are wrapped:
//
//	addresses($expand=city/country($select=name),$select=city)
func (e *ODataEncoder) Expand(forest []*expand.Node) string {
	items := make([]string, 0, len(forest))
	for _, n := range forest {
		items = append(items, expandNode(n))
	}
	return strings.Join(items, ",")
}

func expandNode(n *expand.Node) string {
	children := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, expandNode(c))
	}

	if len(n.Select) == 0 {
		switch len(children) {
		case 0:
			return n.Name
		case 1:
			return n.Name + "/" + children[0]
		default:
			return n.Name + "($expand=" + strings.Join(children, ",") + ")"
		}
	}

	sel := "$select=" + strings.Join(n.Select, ",")
	if len(children) == 0 {
		return n.Name + "(" + sel + ")"
	}
	return n.Name + "($expand=" + strings.Join(children, ",") + "," + sel + ")"
}
