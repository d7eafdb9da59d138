package cards

import (
	"net/url"
	"strings"
	"unicode"
)

// Param is one query-string pair. The slice form keeps wire order under the
// caller's control; url.Values would re-sort keys on encode.
type Param struct {
	Key   string
	Value string
}

// Filter is one caller-supplied field/value pair. For set listings it is
// forwarded verbatim as a query parameter; for card listings it becomes a
// field:value term of the search expression. Insertion order is preserved
// either way.
type Filter struct {
	Field string
	Value string
}

// SetListOptions tunes a sets listing. Zero Page/PageSize are omitted from
// the request so the server defaults apply.
type SetListOptions struct {
	Page     int
	PageSize int
	Filters  []Filter
}

// CardListOptions tunes a card listing within one set.
type CardListOptions struct {
	Page     int
	PageSize int
	Filters  []Filter
}

// encodeParams builds a query string preserving parameter order. Pairs with
// an empty value contribute nothing.
func encodeParams(params []Param) string {
	var b strings.Builder
	for _, p := range params {
		if p.Key == "" || p.Value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// searchQuery composes the cards search expression: the set.id term first,
// then one field:value term per non-empty filter in insertion order, joined
// by single spaces.
func searchQuery(setID string, filters []Filter) string {
	terms := make([]string, 0, len(filters)+1)
	terms = append(terms, searchTerm("set.id", setID))
	for _, f := range filters {
		if f.Field == "" || f.Value == "" {
			continue
		}
		terms = append(terms, searchTerm(f.Field, f.Value))
	}
	return strings.Join(terms, " ")
}

// searchTerm renders field:value, double-quoting the value when it contains
// whitespace so the search grammar treats it as one token.
func searchTerm(field, value string) string {
	if strings.ContainsFunc(value, unicode.IsSpace) {
		return field + `:"` + value + `"`
	}
	return field + ":" + value
}
