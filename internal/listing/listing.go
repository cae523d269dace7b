// Package listing turns URL query parameters into a storage-neutral list
// query: filters, sort order, field projection and pagination.
package listing

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

type Filter struct {
	Field string
	Op    Op
	Value string
}

type SortField struct {
	Name string
	Desc bool
}

type Query struct {
	Filters []Filter
	Sort    []SortField
	Fields  []string
	Page    int
	Limit   int
}

func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Parse reads a list query from URL values. Reserved keys: page, limit, sort,
// fields, q. Any other key is treated as a filter; "price[gte]=2000" style
// keys carry a comparison operator.
func Parse(values url.Values) Query {
	q := Query{Page: 1, Limit: DefaultLimit}

	if v := values.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			q.Page = page
		}
	}
	if v := values.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			q.Limit = min(limit, MaxLimit)
		}
	}
	if v := values.Get("sort"); v != "" {
		for _, name := range strings.Split(v, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if strings.HasPrefix(name, "-") {
				q.Sort = append(q.Sort, SortField{Name: name[1:], Desc: true})
			} else {
				q.Sort = append(q.Sort, SortField{Name: name})
			}
		}
	}
	if v := values.Get("fields"); v != "" {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				q.Fields = append(q.Fields, f)
			}
		}
	}

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		switch key {
		case "page", "limit", "sort", "fields", "q":
			continue
		}
		field, op := parseKey(key)
		q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: vals[0]})
	}

	return q
}

// parseKey splits "price[gte]" into ("price", OpGte); bare keys are equality.
func parseKey(key string) (string, Op) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, OpEq
	}
	field := key[:open]
	switch Op(key[open+1 : len(key)-1]) {
	case OpGt:
		return field, OpGt
	case OpGte:
		return field, OpGte
	case OpLt:
		return field, OpLt
	case OpLte:
		return field, OpLte
	default:
		return field, OpEq
	}
}
