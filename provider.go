package odata

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hugr-lab/odata-go/emit"
	"github.com/hugr-lab/odata-go/expand"
	"github.com/hugr-lab/odata-go/expr"
	"github.com/hugr-lab/odata-go/internal/urlenc"
)

// Provider compiles query parts for one resource path and hands the
// result to the service for dispatch.
type Provider struct {
	svc  *Service
	path string
}

// NewProvider creates a provider for path on svc.
func NewProvider(svc *Service, path string) *Provider {
	return &Provider{svc: svc, path: path}
}

// compiled is the accumulated state of one compilation.
type compiled struct {
	filters []*expr.Lambda
	order   []emit.OrderKey
	selects []string
	expands []expand.Entry
	skip    *int
	top     *int
	group   *GroupByPart
	count   bool
	inline  bool
	params  [][2]string
	opts    RequestOptions
}

// Compile turns parts into a request without dispatching it.
func (p *Provider) Compile(parts []Part) (RequestOptions, error) {
	if len(parts) == 0 {
		return RequestOptions{}, &DispatchError{Reason: ErrNoParts}
	}

	enc := p.svc.config.Encoder
	var c compiled
	for _, part := range parts {
		switch pt := part.(type) {
		case WherePart:
			c.filters = append(c.filters, pt.Predicate)
		case OrderByPart:
			if pt.Seq == 0 {
				c.order = c.order[:0]
			}
			c.order = append(c.order, emit.OrderKey{Key: pt.Key, Descending: pt.Descending})
		case SelectPart:
			s, err := enc.Select(pt.Projection)
			if err != nil {
				return RequestOptions{}, fmt.Errorf("select: %w", err)
			}
			c.selects = append(c.selects, s)
		case ExpandPart:
			entry := expand.Entry{Segments: pt.Segments}
			for _, l := range pt.Select {
				fields, err := expand.Fields(l)
				if err != nil {
					return RequestOptions{}, fmt.Errorf("expand select: %w", err)
				}
				entry.Select = append(entry.Select, fields...)
			}
			c.expands = append(c.expands, entry)
		case SkipPart:
			n := pt.N
			c.skip = &n
		case TopPart:
			n := pt.N
			c.top = &n
		case GroupByPart:
			g := pt
			c.group = &g
		case CountPart:
			c.count = true
			if pt.Predicate != nil {
				c.filters = append(c.filters, pt.Predicate)
			}
		case InlineCountPart:
			c.inline = true
		case ParameterPart:
			c.params = append(c.params, [2]string{pt.Key, paramValue(pt.Value)})
		case OptionsPart:
			c.opts = c.opts.merge(pt.Options)
		case ToArrayPart:
		default:
			return RequestOptions{}, &DispatchError{Reason: ErrUnknownPart, Part: part}
		}
	}

	qs, err := p.queryString(enc, &c)
	if err != nil {
		return RequestOptions{}, err
	}

	url := JoinBase(p.svc.config.BaseAddress, p.path)
	switch {
	case c.count && qs != "":
		url += "/$count/?" + qs
	case c.count:
		url += "/$count"
	case qs != "":
		url += "?" + qs
	}

	req := RequestOptions{
		URL:     url,
		Method:  p.svc.config.Method,
		Headers: cloneHeaders(p.svc.config.Headers),
	}.merge(c.opts)

	p.svc.logger.Debug("Compiled query", "path", p.path, "url", req.URL)
	return req, nil
}

// queryString renders the options in canonical order followed by custom
// parameters.
func (p *Provider) queryString(enc emit.Encoder, c *compiled) (string, error) {
	var opts [][2]string
	add := func(k, v string) {
		if v != "" {
			opts = append(opts, [2]string{k, v})
		}
	}

	if len(c.filters) > 0 {
		f, err := enc.Filters(c.filters)
		if err != nil {
			return "", fmt.Errorf("filter: %w", err)
		}
		add("$filter", f)
	}
	add("$select", strings.Join(c.selects, ","))
	if len(c.expands) > 0 {
		add("$expand", enc.Expand(expand.Build(c.expands)))
	}
	if len(c.order) > 0 {
		o, err := enc.OrderBy(c.order)
		if err != nil {
			return "", fmt.Errorf("orderby: %w", err)
		}
		add("$orderby", o)
	}
	if c.skip != nil {
		add("$skip", strconv.Itoa(*c.skip))
	}
	if c.top != nil {
		add("$top", strconv.Itoa(*c.top))
	}
	if c.group != nil {
		g, err := enc.GroupBy(c.group.Key, c.group.Result)
		if err != nil {
			return "", fmt.Errorf("groupby: %w", err)
		}
		add("$apply", g)
	}
	if c.inline {
		switch p.svc.config.CountStyle {
		case CountV4:
			add("$count", "true")
		default:
			add("$inlinecount", "allpages")
		}
	}
	opts = append(opts, c.params...)

	var sb strings.Builder
	for i, kv := range opts {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(urlenc.Key(kv[0]))
		sb.WriteByte('=')
		sb.WriteString(urlenc.Component(kv[1]))
	}
	return sb.String(), nil
}

// paramValue formats a custom parameter value; nil renders empty.
func paramValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Execute compiles parts and dispatches the result.
// Compilation errors are returned synchronously and nothing is dispatched.
func (p *Provider) Execute(ctx context.Context, parts []Part) (*Future, error) {
	req, err := p.Compile(parts)
	if err != nil {
		return nil, err
	}
	return p.svc.Request(ctx, &req), nil
}
