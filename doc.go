// Package odata compiles typed, fluent query descriptions into OData v4
// request URLs and dispatches them through a pluggable Executor.
//
// The odata package turns:
//   - predicates captured with expr.Fn into $filter
//   - projections into $select
//   - navigation paths into a merged $expand tree
//   - orderings, paging and groupings into $orderby, $skip, $top and $apply
//
// Transport, response decoding into entities and schema metadata are left
// to the Executor.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/hugr-lab/odata-go"
//	    "github.com/hugr-lab/odata-go/expr"
//	    "github.com/hugr-lab/odata-go/httpexec"
//	)
//
//	func main() {
//	    exec, err := httpexec.New(httpexec.Config{})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    svc, err := odata.NewService(odata.Config{
//	        BaseAddress: "https://example.com/odata/",
//	        Executor:    exec,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    companies := svc.CreateQuery("Companies").
//	        Where(expr.Fn("c", func(c expr.Value) expr.Value {
//	            return c.Field("id").Gt(5).And(c.Field("name").Includes("flix"))
//	        })).
//	        OrderBy(expr.Fn("c", func(c expr.Value) expr.Value { return c.Field("name") })).
//	        Top(10)
//
//	    // https://example.com/odata/Companies?$filter=id%20gt%205%20and%20substringof(...)&$orderby=name&$top=10
//	    res, err := companies.ToArray(context.Background())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    log.Println(res)
//	}
//
// # Queries
//
// A Query is immutable. Every fluent method returns a new Query, so a
// base query can be branched freely and used from several goroutines:
//
//	base := svc.CreateQuery("Companies").Top(10)
//	active := base.Where(isActive)
//	deleted := base.Where(isDeleted) // does not see isActive
//
// # Errors
//
// Terminal operators (ToArrayAsync, CountAsync, GroupByAsync, Compile)
// return capture and rendering failures synchronously as
// *UnsupportedExpressionError; nothing is dispatched in that case.
// Executor failures are only delivered through Future.Await as
// *TransportError.
//
// # Logging
//
// The package logs through Config.Logger. When it is nil a text logger on
// stderr is created at Config.LogLevel. Compiled URLs are logged at Debug,
// failed requests at Warn.
//
// # Context Cancellation
//
// Dispatch passes ctx to the Executor. Future.Await returns ctx.Err() when
// ctx is done before the request resolves.
package odata
