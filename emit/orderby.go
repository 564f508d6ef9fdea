package emit

import (
	"strings"

	"github.com/hugr-lab/odata-go/expr"
)

// OrderBy renders ordering keys in call order; descending keys get a
// " desc" suffix.
func (e *ODataEncoder) OrderBy(keys []OrderKey) (string, error) {
	items := make([]string, 0, len(keys))
	for _, k := range keys {
		if k.Key == nil {
			return "", expr.Unsupported("order key", "missing key selector")
		}
		item, err := e.render(k.Key.Body, newScope(k.Key))
		if err != nil {
			return "", err
		}
		if k.Descending {
			item += " desc"
		}
		items = append(items, item)
	}
	return strings.Join(items, ","), nil
}
