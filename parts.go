package odata

import "github.com/hugr-lab/odata-go/expr"

// Part is one accumulated query instruction awaiting compilation.
// The set of parts is closed; Provider.Compile rejects any other
// implementation with ErrUnknownPart.
type Part interface {
	queryPart()
}

// WherePart restricts results to entities matching Predicate.
type WherePart struct {
	Predicate *expr.Lambda
}

// OrderByPart adds an ordering key. Seq is 0 for OrderBy, which starts a
// new ordering, and the key's position for ThenBy.
type OrderByPart struct {
	Key        *expr.Lambda
	Descending bool
	Seq        int
}

// SelectPart projects results.
type SelectPart struct {
	Projection *expr.Lambda
}

// ExpandPart expands the navigation path Segments, optionally selecting
// fields of the expanded entity.
type ExpandPart struct {
	Segments []string
	Select   []*expr.Lambda
}

// SkipPart skips the first N results.
type SkipPart struct {
	N int
}

// TopPart limits results to N.
type TopPart struct {
	N int
}

// GroupByPart groups results, optionally aggregating with Result.
type GroupByPart struct {
	Key    *expr.Lambda
	Result *expr.Lambda
}

// CountPart turns the request into a count, optionally filtered.
type CountPart struct {
	Predicate *expr.Lambda
}

// InlineCountPart asks for the total count alongside results.
type InlineCountPart struct{}

// ParameterPart adds an arbitrary name=value query parameter.
type ParameterPart struct {
	Key   string
	Value any
}

// OptionsPart overrides request options (method, headers).
type OptionsPart struct {
	Options RequestOptions
}

// ToArrayPart terminates a query that materializes results.
type ToArrayPart struct{}

func (WherePart) queryPart()       {}
func (OrderByPart) queryPart()     {}
func (SelectPart) queryPart()      {}
func (ExpandPart) queryPart()      {}
func (SkipPart) queryPart()        {}
func (TopPart) queryPart()         {}
func (GroupByPart) queryPart()     {}
func (CountPart) queryPart()       {}
func (InlineCountPart) queryPart() {}
func (ParameterPart) queryPart()   {}
func (OptionsPart) queryPart()     {}
func (ToArrayPart) queryPart()     {}
