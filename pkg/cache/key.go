package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Signature is the canonical cache key of a query.
type Signature string

// Key identifies an upstream query.
type Key struct {
	// Endpoint is the upstream resource (e.g. "nobelPrizes")
	Endpoint string

	// Params are the query parameters sent upstream
	Params url.Values
}

// Signature generates a deterministic key string.
// Format: nobel:endpoint:param1=val1:param2=val2
//
// Parameter names are sorted; repeated values keep their order. Names and
// values are query-escaped so separators inside values cannot collide.
//
// Example:
//
//	nobel:nobelPrizes:limit=100:nobelPrizeYear=2020
func (k Key) Signature() Signature {
	parts := []string{"nobel"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.Params) > 0 {
		names := make([]string, 0, len(k.Params))
		for name := range k.Params {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			for _, v := range k.Params[name] {
				parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(v))
			}
		}
	}

	return Signature(strings.Join(parts, ":"))
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return string(k.Signature())
}
