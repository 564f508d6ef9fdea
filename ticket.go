package odata

import (
	"errors"
	"fmt"

	"github.com/hugr-lab/odata-go/internal/msgpack"
)

// ticketVersion is the first byte of every ticket.
const ticketVersion byte = 1

// ErrInvalidTicket indicates a ticket that DecodeTicket cannot read.
var ErrInvalidTicket = errors.New("invalid query ticket")

type ticket struct {
	URL     string            `msgpack:"u"`
	Method  string            `msgpack:"m,omitempty"`
	Headers map[string]string `msgpack:"h,omitempty"`
	Body    []byte            `msgpack:"b,omitempty"`
}

// EncodeTicket serializes a compiled request into a compact opaque ticket,
// so a query compiled in one process can be dispatched by another.
//
//	req, _ := q.Compile()
//	t, _ := odata.EncodeTicket(req)
//	// ... later, elsewhere
//	req, _ = odata.DecodeTicket(t)
//	f := svc.Request(ctx, &req)
func EncodeTicket(req RequestOptions) ([]byte, error) {
	data, err := msgpack.Seal(ticketVersion, ticket{
		URL:     req.URL,
		Method:  req.Method,
		Headers: req.Headers,
		Body:    req.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("encode ticket: %w", err)
	}
	return data, nil
}

// DecodeTicket restores a request from a ticket produced by EncodeTicket.
func DecodeTicket(data []byte) (RequestOptions, error) {
	var t ticket
	if err := msgpack.Open(ticketVersion, data, &t); err != nil {
		return RequestOptions{}, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if t.URL == "" {
		return RequestOptions{}, fmt.Errorf("%w: missing url", ErrInvalidTicket)
	}

	return RequestOptions{
		URL:     t.URL,
		Method:  t.Method,
		Headers: t.Headers,
		Body:    t.Body,
	}, nil
}
