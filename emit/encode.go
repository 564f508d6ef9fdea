// Package emit renders expression trees as OData v4 query option values.
//
// Each renderer produces the raw (unencoded) option value:
//
//	enc := emit.NewEncoder(nil)
//	filter, err := enc.Filter(lambda)   // id eq 4 and not addresses/any(a: a/id gt 1000)
//	sel, err := enc.Select(projection)  // id as ID,addresses/$count as count
//	exp := enc.Expand(expand.Build(entries))
//
// Renderers return an *expr.UnsupportedExpressionError for any construct
// outside the supported grammar; nothing is silently dropped.
package emit

import (
	"github.com/hugr-lab/odata-go/expand"
	"github.com/hugr-lab/odata-go/expr"
)

// Encoder converts expression trees to OData query option values.
type Encoder interface {
	// Filter renders a predicate as a $filter value.
	Filter(l *expr.Lambda) (string, error)

	// Filters conjoins several predicates with "and".
	Filters(ls []*expr.Lambda) (string, error)

	// Select renders a projection as a $select value.
	Select(l *expr.Lambda) (string, error)

	// OrderBy renders ordering keys as an $orderby value.
	OrderBy(keys []OrderKey) (string, error)

	// Expand renders a merged expand forest as an $expand value.
	Expand(forest []*expand.Node) string

	// GroupBy renders a grouping as an $apply value.
	GroupBy(key, result *expr.Lambda) (string, error)
}

// Options configures rendering.
type Options struct {
	// SingleQuotedStrings renders string literals in $filter the OData v4
	// way ('it''s'). By default strings are double quoted ("it's").
	SingleQuotedStrings bool
}

// OrderKey is a single $orderby key.
type OrderKey struct {
	Key        *expr.Lambda
	Descending bool
}

// ODataEncoder is the default Encoder.
type ODataEncoder struct {
	opts *Options
}

var _ Encoder = (*ODataEncoder)(nil)

// NewEncoder creates an encoder. If opts is nil, default options are used.
func NewEncoder(opts *Options) *ODataEncoder {
	if opts == nil {
		opts = &Options{}
	}
	return &ODataEncoder{opts: opts}
}
