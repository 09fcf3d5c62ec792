/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrMalformed is returned by Decode for query strings it cannot parse.
var ErrMalformed = errors.New("malformed hub query")

// PageStyle selects how pagination is written to the query string.
type PageStyle int

const (
	// PageOffset writes offset=(page-1)*size and limit=size.
	PageOffset PageStyle = iota
	// PageZeroBased writes page=page-1 and limit=size.
	PageZeroBased
)

// Options names the query-string keys used by the Hub.
type Options struct {
	QueryKey  string
	SortKey   string
	OffsetKey string
	PageKey   string
	LimitKey  string
	PageStyle PageStyle
}

// DefaultOptions matches the Hub REST API.
var DefaultOptions = Options{
	QueryKey:  "q",
	SortKey:   "sort",
	OffsetKey: "offset",
	PageKey:   "page",
	LimitKey:  "limit",
	PageStyle: PageOffset,
}

// Characters that carry meaning in the q grammar and are backslash escaped
// inside values.
const special = `\&|,():~!<>=`

// Encode serializes Params with DefaultOptions.
func Encode(p Params) url.Values {
	return EncodeWith(p, DefaultOptions)
}

// EncodeWith serializes Params into Hub query parameters. Filters are joined
// into q, the sort directive is folded into q, pagination is written as
// offset/limit (or page/limit).
func EncodeWith(p Params, o Options) url.Values {
	values := url.Values{}

	if len(p.Filters) > 0 {
		tokens := make([]string, 0, len(p.Filters))
		for _, f := range p.Filters {
			if token := encodeFilter(f); token != "" {
				tokens = append(tokens, token)
			}
		}
		if len(tokens) > 0 {
			values.Set(o.QueryKey, strings.Join(tokens, "&"))
		}
	}

	if p.Sort != nil && p.Sort.Field != "" {
		dir := p.Sort.Direction
		if !dir.Valid() {
			dir = Asc
		}
		values.Set(o.SortKey, "("+p.Sort.Field+","+string(dir)+")")
	}

	if p.Page != nil && p.Page.ItemsPerPage > 0 {
		switch o.PageStyle {
		case PageZeroBased:
			page := p.Page.PageNumber - 1
			if page < 0 {
				page = 0
			}
			values.Set(o.PageKey, strconv.Itoa(page))
		default:
			values.Set(o.OffsetKey, strconv.Itoa(p.Page.Offset()))
		}
		values.Set(o.LimitKey, strconv.Itoa(p.Page.ItemsPerPage))
	}

	foldSort(values, o)
	return values
}

// FoldSort moves a standalone sort parameter into q using DefaultOptions.
// With an existing q the clause is appended in parentheses after a space;
// without one q becomes the parenthesized clause. The sort key is removed
// in both cases.
func FoldSort(values url.Values) {
	foldSort(values, DefaultOptions)
}

func foldSort(values url.Values, o Options) {
	sort := values.Get(o.SortKey)
	values.Del(o.SortKey)
	if sort == "" {
		return
	}
	clause := "(" + strings.TrimSuffix(strings.TrimPrefix(sort, "("), ")") + ")"
	if q := values.Get(o.QueryKey); q != "" {
		values.Set(o.QueryKey, q+" "+clause)
	} else {
		values.Set(o.QueryKey, clause)
	}
}

func encodeFilter(f Filter) string {
	var value string
	if f.Value.IsList() {
		sep := "|"
		if f.Value.ListOperator == And {
			sep = ","
		}
		parts := make([]string, len(f.Value.List))
		for i, item := range f.Value.List {
			parts[i] = escape(item)
		}
		value = strings.Join(parts, sep)
	} else {
		value = escape(f.Value.Text)
	}
	if value == "" {
		return ""
	}
	if f.Field == "" {
		return value
	}
	op := string(f.Operator)
	switch f.Operator {
	case OpEqual, "":
		op = ":"
	}
	return f.Field + op + value
}

// Decode parses Hub query parameters produced by Encode using DefaultOptions.
func Decode(values url.Values) (Params, error) {
	return DecodeWith(values, DefaultOptions)
}

// DecodeWith parses Hub query parameters. A folded sort clause at the end of
// q is recognized, as is an unfolded sort parameter.
func DecodeWith(values url.Values, o Options) (Params, error) {
	var p Params

	q := values.Get(o.QueryKey)
	rest, clause, hasClause := splitSortClause(q)
	if !hasClause && values.Get(o.SortKey) != "" {
		clause = strings.TrimSuffix(strings.TrimPrefix(values.Get(o.SortKey), "("), ")")
		hasClause = true
	}
	if hasClause {
		sort, err := decodeSort(clause)
		if err != nil {
			return Params{}, err
		}
		p.Sort = sort
	}

	if rest != "" {
		for _, token := range splitUnescaped(rest, '&') {
			if token == "" {
				continue
			}
			f, err := decodeFilter(token)
			if err != nil {
				return Params{}, err
			}
			p.Filters = append(p.Filters, f)
		}
	}

	limitStr := values.Get(o.LimitKey)
	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return Params{}, errors.Wrapf(ErrMalformed, "limit %q", limitStr)
		}
		page := &Page{PageNumber: 1, ItemsPerPage: limit}
		switch o.PageStyle {
		case PageZeroBased:
			if s := values.Get(o.PageKey); s != "" {
				n, err := strconv.Atoi(s)
				if err != nil || n < 0 {
					return Params{}, errors.Wrapf(ErrMalformed, "page %q", s)
				}
				page.PageNumber = n + 1
			}
		default:
			if s := values.Get(o.OffsetKey); s != "" {
				offset, err := strconv.Atoi(s)
				if err != nil || offset < 0 {
					return Params{}, errors.Wrapf(ErrMalformed, "offset %q", s)
				}
				page.PageNumber = offset/limit + 1
			}
		}
		p.Page = page
	}

	return p, nil
}

// splitSortClause separates a trailing "(field,dir)" clause from q. The
// clause must start q or follow a space, and its parentheses must not be
// escaped.
func splitSortClause(q string) (rest string, clause string, ok bool) {
	if !strings.HasSuffix(q, ")") || escapedAt(q, len(q)-1) {
		return q, "", false
	}
	open := -1
	for i := len(q) - 2; i >= 0; i-- {
		if q[i] == '(' && !escapedAt(q, i) {
			open = i
			break
		}
	}
	if open < 0 || (open > 0 && q[open-1] != ' ') {
		return q, "", false
	}
	return strings.TrimRight(q[:open], " "), q[open+1 : len(q)-1], true
}

func decodeSort(clause string) (*Sort, error) {
	field, dir, found := strings.Cut(clause, ",")
	if !found || field == "" {
		return nil, errors.Wrapf(ErrMalformed, "sort clause %q", clause)
	}
	d := Direction(strings.ToLower(strings.TrimSpace(dir)))
	if !d.Valid() {
		return nil, errors.Wrapf(ErrMalformed, "sort direction %q", dir)
	}
	return &Sort{Field: strings.TrimSpace(field), Direction: d}, nil
}

// decodeFilter parses one token. A token whose leading field name is not
// followed by an operator is a free-text search.
func decodeFilter(token string) (Filter, error) {
	i := 0
	for i < len(token) && isFieldChar(token[i]) {
		i++
	}
	op, width := operatorAt(token, i)
	if i == 0 || width == 0 {
		return Filter{Operator: OpLike, Value: Text(unescape(token))}, nil
	}
	f := Filter{Field: token[:i], Operator: op}
	raw := token[i+width:]
	if raw == "" {
		return Filter{}, errors.Wrapf(ErrMalformed, "empty value in %q", token)
	}
	ors := splitUnescaped(raw, '|')
	ands := splitUnescaped(raw, ',')
	switch {
	case len(ors) > 1 && len(ands) > 1:
		return Filter{}, errors.Wrapf(ErrMalformed, "mixed list operators in %q", token)
	case len(ors) > 1:
		f.Value = List(Or, unescapeAll(ors)...)
	case len(ands) > 1:
		f.Value = List(And, unescapeAll(ands)...)
	default:
		f.Value = Text(unescape(raw))
	}
	return f, nil
}

func isFieldChar(c byte) bool {
	return c == '_' || c == '.' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func operatorAt(s string, i int) (Operator, int) {
	rest := s[i:]
	switch {
	case strings.HasPrefix(rest, "!="):
		return OpNotEqual, 2
	case strings.HasPrefix(rest, ">="):
		return OpGreaterOrEqual, 2
	case strings.HasPrefix(rest, "<="):
		return OpLessOrEqual, 2
	case strings.HasPrefix(rest, ":"), strings.HasPrefix(rest, "="):
		return OpEqual, 1
	case strings.HasPrefix(rest, "~"):
		return OpLike, 1
	case strings.HasPrefix(rest, ">"):
		return OpGreater, 1
	case strings.HasPrefix(rest, "<"):
		return OpLess, 1
	}
	return "", 0
}

func escape(s string) string {
	if !strings.ContainsAny(s, special) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unescapeAll(parts []string) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = unescape(p)
	}
	return out
}

// escapedAt reports whether the byte at i is preceded by an odd number of
// backslashes.
func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func splitUnescaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == sep {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
