package emit

import (
	"fmt"
	"strings"

	"github.com/hugr-lab/odata-go/expr"
)

// Operator precedence, lowest first.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCompare
	precAdditive
	precMultiplicative
	precNeg
	precAtom
)

// scope tracks the lambda parameters visible while rendering.
// The first top entries belong to the predicate itself (its parameter
// and optional aggregation context); nested collection lambdas push
// theirs after them.
type scope struct {
	params []string
	top    int
}

func newScope(l *expr.Lambda) scope {
	s := scope{params: []string{l.Param}}
	if l.Context != "" {
		s.params = append(s.params, l.Context)
	}
	s.top = len(s.params)
	return s
}

func (s scope) push(param string) scope {
	params := make([]string, len(s.params), len(s.params)+1)
	copy(params, s.params)
	return scope{params: append(params, param), top: s.top}
}

// prefix resolves a parameter to its rendered path prefix: empty for the
// predicate's own parameter, "$it" when that parameter is referenced from
// inside a nested lambda, the name itself for any other parameter.
func (s scope) prefix(name string) (string, error) {
	for i := len(s.params) - 1; i >= 0; i-- {
		if s.params[i] != name {
			continue
		}
		if i > 0 {
			return name, nil
		}
		if len(s.params) == s.top {
			return "", nil
		}
		return "$it", nil
	}
	return "", expr.Unsupported("parameter "+name, "not bound by any enclosing lambda")
}

// Filter renders a predicate as a $filter value.
func (e *ODataEncoder) Filter(l *expr.Lambda) (string, error) {
	if l == nil {
		return "", nil
	}
	return e.render(l.Body, newScope(l))
}

// Filters conjoins several predicates with "and" in order.
func (e *ODataEncoder) Filters(ls []*expr.Lambda) (string, error) {
	var parts []string
	for _, l := range ls {
		if l == nil {
			continue
		}
		s, err := e.Filter(l)
		if err != nil {
			return "", err
		}
		// a lone "or" predicate binds looser than the joining "and"
		if len(ls) > 1 && precedence(l.Body) < precAnd {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " and "), nil
}

func precedence(n expr.Node) int {
	switch e := n.(type) {
	case *expr.Binary:
		switch e.Op {
		case expr.OpOr:
			return precOr
		case expr.OpAnd:
			return precAnd
		case expr.OpEq, expr.OpNe, expr.OpLt, expr.OpLe, expr.OpGt, expr.OpGe:
			return precCompare
		case expr.OpAdd, expr.OpSub:
			return precAdditive
		case expr.OpMul, expr.OpDiv, expr.OpMod:
			return precMultiplicative
		}
	case *expr.Unary:
		switch e.Op {
		case expr.OpNot:
			return precNot
		case expr.OpNeg:
			return precNeg
		}
	}
	return precAtom
}

func (e *ODataEncoder) render(n expr.Node, s scope) (string, error) {
	switch ex := n.(type) {
	case *expr.Literal:
		return e.literal(ex.Value)
	case *expr.Parameter:
		p, err := s.prefix(ex.Name)
		if err != nil {
			return "", err
		}
		if p == "" {
			return "$it", nil
		}
		return p, nil
	case *expr.Member:
		return e.member(ex, s)
	case *expr.Unary:
		return e.unary(ex, s)
	case *expr.Binary:
		return e.binary(ex, s)
	case *expr.Call:
		return e.call(ex, s)
	case *expr.Conditional:
		return "", expr.Unsupported("conditional", "only allowed in projections")
	case *expr.ObjectLiteral:
		return "", expr.Unsupported("object literal", "only allowed in projections")
	case *expr.Lambda:
		return "", expr.Unsupported("lambda", "only allowed as a collection function argument")
	case nil:
		return "", expr.Unsupported("empty expression", "")
	default:
		return "", expr.Unsupported(fmt.Sprintf("%T", n), "")
	}
}

// member renders a member chain as a slash separated path.
func (e *ODataEncoder) member(m *expr.Member, s scope) (string, error) {
	root, fields, ok := expr.MemberPath(m)
	if !ok {
		return "", expr.Unsupported("member access", fmt.Sprintf("field %q is not reached from a lambda parameter", m.Field))
	}
	p, err := s.prefix(root.Name)
	if err != nil {
		return "", err
	}
	path := strings.Join(fields, "/")
	if p == "" {
		return path, nil
	}
	return p + "/" + path, nil
}

func (e *ODataEncoder) unary(u *expr.Unary, s scope) (string, error) {
	operand, err := e.render(u.Operand, s)
	if err != nil {
		return "", err
	}
	switch u.Op {
	case expr.OpNot:
		if precedence(u.Operand) < precNot {
			operand = "(" + operand + ")"
		}
		return "not " + operand, nil
	case expr.OpNeg:
		if precedence(u.Operand) <= precNeg {
			operand = "(" + operand + ")"
		}
		return "-" + operand, nil
	default:
		return "", expr.Unsupported("unary operator "+string(u.Op), "")
	}
}

func (e *ODataEncoder) binary(b *expr.Binary, s scope) (string, error) {
	p := precedence(b)
	if p == precAtom {
		return "", expr.Unsupported("binary operator "+string(b.Op), "")
	}
	left, err := e.render(b.Left, s)
	if err != nil {
		return "", err
	}
	right, err := e.render(b.Right, s)
	if err != nil {
		return "", err
	}
	if wrapLeft(b, p) {
		left = "(" + left + ")"
	}
	// equal precedence on the right would regroup under left associativity
	if precedence(b.Right) <= p {
		right = "(" + right + ")"
	}
	return left + " " + string(b.Op) + " " + right, nil
}

func wrapLeft(b *expr.Binary, p int) bool {
	lp := precedence(b.Left)
	switch {
	case lp < p:
		return true
	case lp > p:
		return false
	case b.Op.IsComparison():
		// comparisons do not chain
		return true
	case b.Op == expr.OpMod:
		// mod never follows mul/div without parentheses
		l, ok := b.Left.(*expr.Binary)
		return ok && l.Op != expr.OpMod
	}
	return false
}

func (e *ODataEncoder) call(c *expr.Call, s scope) (string, error) {
	switch c.Name {
	case expr.FuncLength:
		target, err := e.target(c, s)
		if err != nil {
			return "", err
		}
		return "length(" + target + ")", nil

	case expr.FuncIncludes:
		target, err := e.target(c, s)
		if err != nil {
			return "", err
		}
		if len(c.Args) != 1 {
			return "", expr.Unsupported("includes", "expects one argument")
		}
		needle, err := e.render(c.Args[0], s)
		if err != nil {
			return "", err
		}
		return "substringof(" + needle + ", " + target + ")", nil

	case expr.FuncRound:
		if c.Target != nil || len(c.Args) != 1 {
			return "", expr.Unsupported("round", "expects one argument")
		}
		arg, err := e.render(c.Args[0], s)
		if err != nil {
			return "", err
		}
		return "round(" + arg + ")", nil

	case expr.FuncAny, expr.FuncAll:
		target, err := e.target(c, s)
		if err != nil {
			return "", err
		}
		if len(c.Args) != 1 {
			return "", expr.Unsupported(c.Name, "expects one predicate")
		}
		l, ok := c.Args[0].(*expr.Lambda)
		if !ok {
			return "", expr.Unsupported(c.Name, "argument is not a lambda")
		}
		body, err := e.render(l.Body, s.push(l.Param))
		if err != nil {
			return "", err
		}
		return target + "/" + c.Name + "(" + l.Param + ": " + body + ")", nil

	case expr.FuncCount:
		target, err := e.target(c, s)
		if err != nil {
			return "", err
		}
		return target + "/$count", nil

	case expr.FuncGeoDistance, expr.FuncGeoIntersects, expr.FuncGeoLength:
		want := 2
		if c.Name == expr.FuncGeoLength {
			want = 1
		}
		if c.Target != nil || len(c.Args) != want {
			return "", expr.Unsupported(c.Name, fmt.Sprintf("expects %d arguments", want))
		}
		args := make([]string, 0, len(c.Args))
		for _, a := range c.Args {
			r, err := e.render(a, s)
			if err != nil {
				return "", err
			}
			args = append(args, r)
		}
		return c.Name + "(" + strings.Join(args, ", ") + ")", nil

	default:
		return "", expr.Unsupported("call "+c.Name, "not supported in $filter")
	}
}

// target renders the receiver of a method call.
func (e *ODataEncoder) target(c *expr.Call, s scope) (string, error) {
	if c.Target == nil {
		return "", expr.Unsupported("call "+c.Name, "missing receiver")
	}
	return e.render(c.Target, s)
}
