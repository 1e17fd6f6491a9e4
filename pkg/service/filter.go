package service

import (
	"net/url"

	"github.com/google/go-querystring/query"
)

// Filter is the typed form of the upstream prize query parameters.
// Zero fields are omitted.
type Filter struct {
	Year     int    `url:"nobelPrizeYear,omitempty"`
	Category string `url:"nobelPrizeCategory,omitempty"`
	Limit    int    `url:"limit,omitempty"`
	Offset   int    `url:"offset,omitempty"`
}

// Narrowed reports whether the filter restricts the set by year or category.
func (f Filter) Narrowed() bool {
	return f.Year != 0 || f.Category != ""
}

// Values encodes the filter as upstream query parameters.
func (f Filter) Values() url.Values {
	v, err := query.Values(f)
	if err != nil {
		// Only reachable with unsupported field types.
		return url.Values{}
	}
	return v
}
