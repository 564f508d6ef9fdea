// Package expr provides the expression model used to describe OData queries.
//
// Go cannot read a closure's body, so predicates are written with an
// explicit builder. A callback receives a Value bound to its parameter and
// returns the Value it builds:
//
//	pred := expr.Fn("c", func(c expr.Value) expr.Value {
//	    return c.Field("id").Eq(4).And(
//	        c.Field("addresses").Any("a", func(a expr.Value) expr.Value {
//	            return a.Field("id").Gt(1000)
//	        }).Not(),
//	    )
//	})
//
// The captured Lambda keeps the parameter names exactly as written
// ("c", "a"); they reappear in rendered collection lambdas such as
// addresses/any(a: a/id gt 1000).
//
// # Expression Types
//
// The node set is closed:
//   - Literal: constants (numbers, strings, booleans, nil, time.Time, uuid.UUID, orb geometries)
//   - Parameter: a lambda parameter reference
//   - Member: field access
//   - Unary, Binary: operators
//   - Conditional: test ? a : b (projections only)
//   - Call: recognized functions (length, includes, round, any, all, count, sum, ...)
//   - ObjectLiteral: ordered projection, built with Object
//   - Lambda: parameter binding
//
// # Unsupported Constructs
//
// Constructs outside this grammar, such as Value.Index, produce an
// *UnsupportedExpressionError. The error is sticky on the Value and is
// reported by Fn; query terminal operators return it before any request
// is dispatched.
package expr
