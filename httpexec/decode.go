package httpexec

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Response is a completed HTTP response with a decompressed body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Count parses the plain-text body returned for a $count request.
func (r *Response) Count() (int64, error) {
	n, err := strconv.ParseInt(string(bytes.TrimSpace(r.Body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return n, nil
}

// Collection is an OData collection payload. Count is set when the
// request asked for an inline count, in either the v4 (@odata.count) or
// the v2/v3 (odata.count, __count) form.
type Collection[T any] struct {
	Value    []T
	Count    *int64
	NextLink string
}

type collectionPayload[T any] struct {
	Value    []T             `json:"value"`
	Count    *int64          `json:"@odata.count"`
	CountV3  json.RawMessage `json:"odata.count"`
	NextLink string          `json:"@odata.nextLink"`
	D        *struct {
		Results []T    `json:"results"`
		Count   string `json:"__count"`
		Next    string `json:"__next"`
	} `json:"d"`
}

// DecodeCollection decodes an OData collection response.
func DecodeCollection[T any](r *Response) (Collection[T], error) {
	var raw collectionPayload[T]
	if err := r.Decode(&raw); err != nil {
		return Collection[T]{}, err
	}

	c := Collection[T]{Value: raw.Value, Count: raw.Count, NextLink: raw.NextLink}
	if c.Count == nil && len(raw.CountV3) > 0 {
		n, err := strconv.ParseInt(strings.Trim(string(raw.CountV3), `"`), 10, 64)
		if err != nil {
			return Collection[T]{}, fmt.Errorf("decode response: odata.count: %w", err)
		}
		c.Count = &n
	}
	if d := raw.D; d != nil {
		if c.Value == nil {
			c.Value = d.Results
		}
		if c.NextLink == "" {
			c.NextLink = d.Next
		}
		if c.Count == nil && d.Count != "" {
			n, err := strconv.ParseInt(d.Count, 10, 64)
			if err != nil {
				return Collection[T]{}, fmt.Errorf("decode response: __count: %w", err)
			}
			c.Count = &n
		}
	}
	return c, nil
}
