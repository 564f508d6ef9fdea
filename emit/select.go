package emit

import (
	"fmt"
	"strings"

	"github.com/hugr-lab/odata-go/expr"
)

// Select renders a projection as a $select value.
//
// An object projection renders each key in order as one of:
//
//	path as KEY
//	path/$count as KEY
//	path ? "T" : "F" as KEY
//
// A plain selector renders the bare path.
func (e *ODataEncoder) Select(l *expr.Lambda) (string, error) {
	if l == nil {
		return "", nil
	}
	s := newScope(l)
	obj, ok := l.Body.(*expr.ObjectLiteral)
	if !ok {
		return e.selectPath(l.Body, s)
	}
	items := make([]string, 0, len(obj.Props))
	for _, p := range obj.Props {
		item, err := e.selectItem(p.Value, s)
		if err != nil {
			return "", fmt.Errorf("select %s: %w", p.Key, err)
		}
		items = append(items, item+" as "+p.Key)
	}
	return strings.Join(items, ","), nil
}

func (e *ODataEncoder) selectItem(n expr.Node, s scope) (string, error) {
	switch v := n.(type) {
	case *expr.Member, *expr.Parameter:
		return e.selectPath(v, s)
	case *expr.Call:
		if v.Name != expr.FuncCount || v.Target == nil || len(v.Args) != 0 {
			return "", expr.Unsupported("call "+v.Name, "not supported in $select")
		}
		path, err := e.selectPath(v.Target, s)
		if err != nil {
			return "", err
		}
		return path + "/$count", nil
	case *expr.Conditional:
		test, err := e.render(v.Test, s)
		if err != nil {
			return "", err
		}
		whenTrue, err := selectLiteral(v.WhenTrue)
		if err != nil {
			return "", err
		}
		whenFalse, err := selectLiteral(v.WhenFalse)
		if err != nil {
			return "", err
		}
		return test + " ? " + whenTrue + " : " + whenFalse, nil
	default:
		return "", expr.Unsupported(fmt.Sprintf("%T", n), "not supported in $select")
	}
}

// selectPath renders a member chain of the projection parameter.
func (e *ODataEncoder) selectPath(n expr.Node, s scope) (string, error) {
	m, ok := n.(*expr.Member)
	if !ok {
		return "", expr.Unsupported(fmt.Sprintf("%T", n), "$select needs a field path")
	}
	return e.member(m, s)
}

// selectLiteral renders a conditional branch; strings are always double quoted.
func selectLiteral(n expr.Node) (string, error) {
	lit, ok := n.(*expr.Literal)
	if !ok {
		return "", expr.Unsupported(fmt.Sprintf("%T", n), "conditional branches must be literals")
	}
	if s, ok := lit.Value.(string); ok {
		return quoteDouble(s)
	}
	return defaultEncoder.literal(lit.Value)
}

var defaultEncoder = NewEncoder(nil)
