package emit

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hugr-lab/odata-go/expr"
)

var (
	aggregatorsMu sync.RWMutex
	aggregators   = map[string]string{
		expr.FuncSum:     "sum",
		expr.FuncMin:     "min",
		expr.FuncMax:     "max",
		expr.FuncAverage: "average",
	}
)

// RegisterAggregator maps a field aggregator call name to the token
// rendered in "<field> with <token> as <alias>".
// Registering an existing name replaces its token.
func RegisterAggregator(name, token string) {
	aggregatorsMu.Lock()
	defer aggregatorsMu.Unlock()
	aggregators[name] = token
}

func aggregator(name string) (string, bool) {
	aggregatorsMu.RLock()
	defer aggregatorsMu.RUnlock()
	token, ok := aggregators[name]
	return token, ok
}

// GroupBy renders a grouping as an $apply value:
//
//	groupby((deleted))
//	groupby((deleted),aggregate(deleted,$count as count,id with sum as sumId))
//
// key selects the grouping fields, either a single path or an object of
// paths. result, when set, must be an object whose values are group
// keys, g.Count() or a registered field aggregator such as
// g.Sum("x", func(x expr.Value) expr.Value { return x.Field("id") }).
// Inside aggregate(...) the group keys always come first, in key order,
// followed by the aggregates in the order result lists them.
func (e *ODataEncoder) GroupBy(key, result *expr.Lambda) (string, error) {
	if key == nil {
		return "", expr.Unsupported("groupby", "missing key selector")
	}
	keys, err := groupKeys(key)
	if err != nil {
		return "", err
	}
	out := "groupby((" + strings.Join(keys, ",") + ")"
	if result == nil {
		return out + ")", nil
	}
	aggs, err := aggregates(result, keys)
	if err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return out + ")", nil
	}
	terms := append(append(make([]string, 0, len(keys)+len(aggs)), keys...), aggs...)
	return out + ",aggregate(" + strings.Join(terms, ",") + "))", nil
}

func groupKeys(l *expr.Lambda) ([]string, error) {
	var values []expr.Node
	if obj, ok := l.Body.(*expr.ObjectLiteral); ok {
		for _, p := range obj.Props {
			values = append(values, p.Value)
		}
	} else {
		values = []expr.Node{l.Body}
	}
	keys := make([]string, 0, len(values))
	for _, v := range values {
		path, err := fieldPath(v, l.Param)
		if err != nil {
			return nil, fmt.Errorf("groupby key: %w", err)
		}
		keys = append(keys, path)
	}
	if len(keys) == 0 {
		return nil, expr.Unsupported("groupby", "no grouping keys")
	}
	return keys, nil
}

// aggregates renders the aggregate terms of a result selector. Plain
// member values must name a group key; they are emitted from the key
// list, not from here.
func aggregates(l *expr.Lambda, keys []string) ([]string, error) {
	obj, ok := l.Body.(*expr.ObjectLiteral)
	if !ok {
		return nil, expr.Unsupported("groupby result", "result selector must be an object")
	}
	var terms []string
	for _, p := range obj.Props {
		if m, ok := p.Value.(*expr.Member); ok {
			path, err := fieldPath(m, l.Param)
			if err != nil {
				return nil, fmt.Errorf("aggregate %s: %w", p.Key, err)
			}
			if !slices.Contains(keys, path) {
				return nil, fmt.Errorf("aggregate %s: %w", p.Key, expr.Unsupported("field "+path, "not a group key"))
			}
			continue
		}
		term, err := aggregateTerm(p, l)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", p.Key, err)
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func aggregateTerm(p expr.Property, l *expr.Lambda) (string, error) {
	c, ok := p.Value.(*expr.Call)
	if !ok {
		return "", expr.Unsupported(fmt.Sprintf("%T", p.Value), "not supported in aggregate")
	}
	if err := checkGroupTarget(c, l); err != nil {
		return "", err
	}
	if c.Name == expr.FuncCount {
		if len(c.Args) != 0 {
			return "", expr.Unsupported("count", "takes no arguments in an aggregate")
		}
		return "$count as " + p.Key, nil
	}
	token, ok := aggregator(c.Name)
	if !ok {
		return "", expr.Unsupported("call "+c.Name, "unknown aggregator")
	}
	if len(c.Args) != 1 {
		return "", expr.Unsupported(c.Name, "expects a field selector")
	}
	sel, ok := c.Args[0].(*expr.Lambda)
	if !ok {
		return "", expr.Unsupported(c.Name, "argument is not a lambda")
	}
	field, err := fieldPath(sel.Body, sel.Param)
	if err != nil {
		return "", err
	}
	return field + " with " + token + " as " + p.Key, nil
}

// checkGroupTarget requires an aggregate call to be made on the group
// parameter or on the aggregation context.
func checkGroupTarget(c *expr.Call, l *expr.Lambda) error {
	p, ok := c.Target.(*expr.Parameter)
	if !ok {
		return expr.Unsupported("call "+c.Name, "aggregates apply to the group, not to a field")
	}
	if p.Name != l.Param && (l.Context == "" || p.Name != l.Context) {
		return expr.Unsupported("parameter "+p.Name, "not bound by any enclosing lambda")
	}
	return nil
}

// fieldPath renders a member chain rooted at param as a/b/c.
func fieldPath(n expr.Node, param string) (string, error) {
	root, fields, ok := expr.MemberPath(n)
	if !ok || len(fields) == 0 {
		return "", expr.Unsupported(fmt.Sprintf("%T", n), "expected a field path")
	}
	if root.Name != param {
		return "", expr.Unsupported("parameter "+root.Name, "not bound by any enclosing lambda")
	}
	return strings.Join(fields, "/"), nil
}
