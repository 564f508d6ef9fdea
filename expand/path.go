package expand

import (
	"fmt"
	"strings"

	"github.com/hugr-lab/odata-go/expr"
)

// ParsePath normalizes a string navigation path into segments.
// Accepted forms, all equivalent:
//
//	"addresses.city.country"
//	"addresses/city/country"
//	"c => c.addresses.city.country"
//	"c => c.addresses.$expand(a => a.city).country"
func ParsePath(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, expr.Unsupported("navigation path", "empty path")
	}
	if strings.Contains(path, "=>") {
		return parseArrow(path)
	}
	segs := strings.Split(strings.ReplaceAll(path, "/", "."), ".")
	for _, s := range segs {
		if !isIdent(s) {
			return nil, expr.Unsupported("navigation path", fmt.Sprintf("invalid segment %q in %q", s, path))
		}
	}
	return segs, nil
}

// parseArrow parses the stringified arrow form "p => p.a.$expand(x => x.b).c".
func parseArrow(src string) ([]string, error) {
	param, body, _ := strings.Cut(src, "=>")
	param = strings.TrimSpace(param)
	param = strings.TrimSuffix(strings.TrimPrefix(param, "("), ")")
	param = strings.TrimSpace(param)
	body = strings.TrimSpace(body)
	if !isIdent(param) {
		return nil, expr.Unsupported("navigation path", fmt.Sprintf("invalid parameter %q in %q", param, src))
	}
	if !strings.HasPrefix(body, param) {
		return nil, expr.Unsupported("navigation path", fmt.Sprintf("body of %q does not start with %q", src, param))
	}
	rest := body[len(param):]
	var segs []string
	for rest != "" {
		if rest[0] != '.' {
			return nil, expr.Unsupported("navigation path", fmt.Sprintf("unexpected %q in %q", rest, src))
		}
		rest = rest[1:]
		if rest == "" {
			return nil, expr.Unsupported("navigation path", fmt.Sprintf("trailing separator in %q", src))
		}
		if strings.HasPrefix(rest, expr.FuncExpand+"(") {
			inner, tail, err := balanced(rest[len(expr.FuncExpand):])
			if err != nil {
				return nil, fmt.Errorf("%w in %q", err, src)
			}
			sub, err := ParsePath(inner)
			if err != nil {
				return nil, err
			}
			segs = append(segs, sub...)
			rest = tail
			continue
		}
		end := strings.IndexAny(rest, ".(")
		if end < 0 {
			end = len(rest)
		}
		seg := strings.TrimSpace(rest[:end])
		if !isIdent(seg) {
			return nil, expr.Unsupported("navigation path", fmt.Sprintf("invalid segment %q in %q", seg, src))
		}
		segs = append(segs, seg)
		rest = rest[end:]
	}
	if len(segs) == 0 {
		return nil, expr.Unsupported("navigation path", fmt.Sprintf("no segments in %q", src))
	}
	return segs, nil
}

// balanced splits "(inner)tail" at the parenthesis matching the first one.
func balanced(s string) (inner, tail string, err error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], nil
			}
		}
	}
	return "", "", expr.Unsupported("navigation path", "unbalanced parentheses")
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// Segments extracts the navigation path of a selector lambda such as
// c => c.addresses.$expand(a => a.city).country.
func Segments(l *expr.Lambda) ([]string, error) {
	if l == nil {
		return nil, expr.Unsupported("navigation selector", "missing selector")
	}
	segs, err := segments(l.Body, l.Param)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, expr.Unsupported("navigation selector", "selector does not navigate")
	}
	return segs, nil
}

func segments(n expr.Node, param string) ([]string, error) {
	switch e := n.(type) {
	case *expr.Parameter:
		if e.Name != param {
			return nil, expr.Unsupported("navigation selector", fmt.Sprintf("unbound parameter %q", e.Name))
		}
		return nil, nil
	case *expr.Member:
		segs, err := segments(e.Target, param)
		if err != nil {
			return nil, err
		}
		return append(segs, e.Field), nil
	case *expr.Call:
		if e.Name != expr.FuncExpand || len(e.Args) != 1 {
			return nil, expr.Unsupported("navigation selector", "call "+e.Name)
		}
		inner, ok := e.Args[0].(*expr.Lambda)
		if !ok {
			return nil, expr.Unsupported("navigation selector", "$expand needs a selector")
		}
		segs, err := segments(e.Target, param)
		if err != nil {
			return nil, err
		}
		sub, err := segments(inner.Body, inner.Param)
		if err != nil {
			return nil, err
		}
		return append(segs, sub...), nil
	default:
		return nil, expr.Unsupported("navigation selector", fmt.Sprintf("%T", n))
	}
}

// Fields extracts the field names selected by a field selector:
// a member path (a => a.city) or an object of member paths.
func Fields(l *expr.Lambda) ([]string, error) {
	if l == nil {
		return nil, nil
	}
	if obj, ok := l.Body.(*expr.ObjectLiteral); ok {
		fields := make([]string, 0, len(obj.Props))
		for _, p := range obj.Props {
			f, err := field(p.Value, l.Param)
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
		return fields, nil
	}
	f, err := field(l.Body, l.Param)
	if err != nil {
		return nil, err
	}
	return []string{f}, nil
}

func field(n expr.Node, param string) (string, error) {
	root, path, ok := expr.MemberPath(n)
	if !ok || len(path) == 0 {
		return "", expr.Unsupported("field selector", fmt.Sprintf("%T is not a field path", n))
	}
	if root.Name != param {
		return "", expr.Unsupported("field selector", fmt.Sprintf("unbound parameter %q", root.Name))
	}
	return strings.Join(path, "/"), nil
}
