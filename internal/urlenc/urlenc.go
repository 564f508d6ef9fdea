// Package urlenc encodes URL query components the way ECMAScript
// encodeURIComponent does, which is the encoding OData servers expect
// for whole option values.
package urlenc

import "strings"

const upperhex = "0123456789ABCDEF"

// Component percent-encodes every byte of s except the unreserved set
// A-Z a-z 0-9 - _ . ! ~ * ' ( ). Spaces become %20, never '+'.
//
// Parentheses stay raw even though they are sub-delimiters: servers and
// existing callers compare URLs such as groupby((deleted)) byte for byte,
// so do not add them to the escaped set. Slashes are escaped (%2F).
func Component(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	return sb.String()
}

// Key encodes a query parameter name. System query options keep their
// leading '$' so that $filter stays readable on the wire.
func Key(s string) string {
	if rest, ok := strings.CutPrefix(s, "$"); ok {
		return "$" + Component(rest)
	}
	return Component(s)
}

func unreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
