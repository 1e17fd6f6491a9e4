// Package prize defines the normalized Nobel prize model and the rules that
// map raw upstream records onto it.
package prize

import (
	"math/big"
	"strings"
)

// Prize is one normalized prize award. Values are built fresh by Normalize and
// are never mutated afterwards.
type Prize struct {
	// Year is the award year as reported upstream (0 when missing)
	Year int `json:"year"`

	// Category is the English category label, "Unknown" when missing
	Category string `json:"category"`

	// DateAwarded is the award date text, nil when missing
	DateAwarded *string `json:"dateAwarded"`

	// PrizeAmount is the nominal amount in SEK (0 when missing)
	PrizeAmount int `json:"prizeAmount"`

	// Winners is never nil. An empty slice means no recorded winners.
	Winners []Laureate `json:"winners"`
}

// Laureate is a prize winner, either a person or an organization.
type Laureate struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Motivation string  `json:"motivation"`
	Share      *string `json:"share"`
}

// ShareRat parses the laureate's portion (e.g. "1/3") as a rational.
// Returns nil when the share is absent or not a valid fraction.
func (l Laureate) ShareRat() *big.Rat {
	if l.Share == nil {
		return nil
	}
	r, ok := new(big.Rat).SetString(strings.TrimSpace(*l.Share))
	if !ok {
		return nil
	}
	return r
}

// WinnerNames returns the laureate names in award order.
func (p Prize) WinnerNames() []string {
	names := make([]string, 0, len(p.Winners))
	for _, w := range p.Winners {
		names = append(names, w.Name)
	}
	return names
}
