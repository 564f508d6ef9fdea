package emit

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/hugr-lab/odata-go/expr"
)

// Literal formats a Go value as an OData literal using the encoder's options.
func (e *ODataEncoder) Literal(v any) (string, error) {
	return e.literal(v)
}

func (e *ODataEncoder) literal(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "null", nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	case string:
		if e.opts.SingleQuotedStrings {
			return quoteSingle(x), nil
		}
		return quoteDouble(x)
	case int:
		return strconv.Itoa(x), nil
	case int8:
		return strconv.FormatInt(int64(x), 10), nil
	case int16:
		return strconv.FormatInt(int64(x), 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return formatFloat(float64(x), 32), nil
	case float64:
		return formatFloat(x, 64), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case uuid.UUID:
		return x.String(), nil
	case orb.Geometry:
		return formatGeography(x), nil
	case fmt.Stringer:
		return e.literal(x.String())
	default:
		return "", expr.Unsupported(fmt.Sprintf("literal of type %T", v), "")
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// formatGeography renders a geometry as an OData geography literal.
func formatGeography(g orb.Geometry) string {
	return "geography'SRID=4326;" + wkt.MarshalString(g) + "'"
}

// quoteDouble produces a JSON style double-quoted string.
func quoteDouble(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("failed to quote string literal: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// quoteSingle produces an OData single-quoted string; embedded quotes are doubled.
func quoteSingle(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
