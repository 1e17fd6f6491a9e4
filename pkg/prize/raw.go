package prize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawPage is the envelope returned by the upstream /nobelPrizes endpoint.
type RawPage struct {
	Prizes List[RawPrize] `json:"nobelPrizes"`
	Meta   Meta           `json:"meta"`
}

// Meta carries the upstream paging information.
type Meta struct {
	Offset Number `json:"offset"`
	Limit  Number `json:"limit"`
	Count  Number `json:"count"`
}

// UnmarshalJSON decodes an object leniently; any other shape is a zero Meta.
func (m *Meta) UnmarshalJSON(data []byte) error {
	type plain Meta
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		v = plain{}
	}
	*m = Meta(v)
	return nil
}

// RawPrize is one prize record as sent by the upstream source.
type RawPrize struct {
	AwardYear   Number            `json:"awardYear"`
	Category    Localized         `json:"category"`
	DateAwarded NullText          `json:"dateAwarded"`
	PrizeAmount Number            `json:"prizeAmount"`
	Laureates   List[RawLaureate] `json:"laureates"`
}

// RawLaureate is one laureate entry inside a RawPrize.
type RawLaureate struct {
	ID         Text      `json:"id"`
	KnownName  Localized `json:"knownName"`
	OrgName    Localized `json:"orgName"`
	Motivation Localized `json:"motivation"`
	Portion    NullText  `json:"portion"`
}

// DecodePrizes parses an upstream /nobelPrizes response body. Only a body
// that is not a JSON object fails; malformed records inside it decode to
// zero values and are left to the Normalizer.
func DecodePrizes(body []byte) (RawPage, error) {
	var page RawPage
	if err := json.Unmarshal(body, &page); err != nil {
		return RawPage{}, fmt.Errorf("decode prizes payload: %w", err)
	}
	return page, nil
}

// Localized is a language-keyed label such as {"en": "Physics", "se": "Fysik"}.
// Anything that is not an object of strings decodes to an empty value.
type Localized map[string]string

// UnmarshalJSON keeps the string-valued entries of an object and ignores
// every other shape.
func (l *Localized) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		*l = nil
		return nil
	}
	out := make(Localized, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	*l = out
	return nil
}

// English returns the "en" label when it is present and non-blank.
func (l Localized) English() (string, bool) {
	s, ok := l["en"]
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Number decodes either a JSON number or a numeric string. Fractions are
// truncated toward zero. Values that are neither, or that fall outside the
// int range, decode to zero.
type Number int

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if v, err := strconv.Atoi(s); err == nil {
		*n = Number(v)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f >= math.MaxInt || f < math.MinInt {
		*n = 0
		return nil
	}
	*n = Number(int(f))
	return nil
}

// Int returns the value as a plain int.
func (n Number) Int() int { return int(n) }

// Text decodes a JSON string or number into its textual form.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*t = Text(num.String())
		return nil
	}
	*t = ""
	return nil
}

// NullText is an optional text field. Strings and numbers keep their textual
// form; null and every other shape decode as absent.
type NullText struct {
	value *string
}

// NewNullText returns a present NullText holding s.
func NewNullText(s string) NullText { return NullText{value: &s} }

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullText) UnmarshalJSON(data []byte) error {
	n.value = nil
	if strings.TrimSpace(string(data)) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n.value = &s
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		v := num.String()
		n.value = &v
	}
	return nil
}

// Ptr returns a copy of the text, or nil when absent.
func (n NullText) Ptr() *string {
	if n.value == nil {
		return nil
	}
	v := *n.value
	return &v
}

// List decodes a JSON array element by element. An element that does not fit
// T becomes the zero T; a value that is not an array decodes to an empty list.
type List[T any] []T

// UnmarshalJSON implements json.Unmarshaler.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		*l = nil
		return nil
	}
	out := make(List[T], 0, len(elems))
	for _, raw := range elems {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			var zero T
			v = zero
		}
		out = append(out, v)
	}
	*l = out
	return nil
}
