// Package query turns list request parameters into an immutable store query
// specification plus the pagination metadata that goes with it.
package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Pagination bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ErrInvalidPagination is returned for a page below 1 or a limit outside
// [1, MaxLimit].
var ErrInvalidPagination = errors.New("query: invalid pagination parameters")

// SortKey names a sortable entry attribute.
type SortKey string

const (
	SortByCreatedAt SortKey = "createdAt"
	SortByYear      SortKey = "year"
	SortByTitle     SortKey = "title"
)

func parseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortByYear, SortByTitle, SortByCreatedAt:
		return k
	}
	return SortByCreatedAt
}

// Params are the raw list parameters of a request.
type Params struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

// Filter selects entries. The zero Filter matches everything.
//
// Search is a case-insensitive substring match against title OR director.
type Filter struct {
	Search string
}

// IsZero reports whether the filter matches every entry.
func (f Filter) IsZero() bool { return f.Search == "" }

// Order is the primary sort of a listing. Stores break ties on id ascending.
type Order struct {
	Key        SortKey
	Descending bool
}

// Spec is everything a store needs to run a list query. The count query uses
// Filter alone.
type Spec struct {
	Filter Filter
	Order  Order
	Limit  int
	Offset int
}

// ParseParams reads list parameters from a query string, applying defaults
// for absent values. Non-integer page or limit values are rejected.
func ParseParams(values url.Values) (Params, error) {
	p := Params{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		Search:    values.Get("search"),
		SortBy:    values.Get("sortBy"),
		SortOrder: values.Get("sortOrder"),
	}

	var err error
	if p.Page, err = intParam(values, "page", DefaultPage); err != nil {
		return Params{}, err
	}
	if p.Limit, err = intParam(values, "limit", DefaultLimit); err != nil {
		return Params{}, err
	}
	return p, nil
}

func intParam(values url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidPagination, name, raw)
	}
	return n, nil
}

// Build validates p and produces the store query specification.
func Build(p Params) (Spec, error) {
	if p.Page < 1 || p.Limit < 1 || p.Limit > MaxLimit {
		return Spec{}, ErrInvalidPagination
	}
	// Pages past the addressable range clamp to an empty page.
	offset := math.MaxInt
	if p.Page-1 <= math.MaxInt/p.Limit {
		offset = (p.Page - 1) * p.Limit
	}
	return Spec{
		Filter: Filter{Search: p.Search},
		Order: Order{
			Key:        parseSortKey(p.SortBy),
			Descending: p.SortOrder != "asc",
		},
		Limit:  p.Limit,
		Offset: offset,
	}, nil
}

// Pagination is the metadata returned alongside a page of entries.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination computes page metadata. limit must be positive.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
