package service

import (
	"net/url"
	"testing"
)

func TestFilter_Values(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   url.Values
	}{
		{
			name:   "empty",
			filter: Filter{},
			want:   url.Values{},
		},
		{
			name:   "year and category",
			filter: Filter{Year: 2020, Category: "phy"},
			want:   url.Values{"nobelPrizeYear": {"2020"}, "nobelPrizeCategory": {"phy"}},
		},
		{
			name:   "paging",
			filter: Filter{Limit: 100, Offset: 200},
			want:   url.Values{"limit": {"100"}, "offset": {"200"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Values()
			if got.Encode() != tt.want.Encode() {
				t.Errorf("Values() = %q, want %q", got.Encode(), tt.want.Encode())
			}
		})
	}
}

func TestFilter_Narrowed(t *testing.T) {
	if (Filter{Limit: 10}).Narrowed() {
		t.Error("limit alone does not narrow the set")
	}
	if !(Filter{Year: 1901}).Narrowed() {
		t.Error("year narrows the set")
	}
	if !(Filter{Category: "che"}).Narrowed() {
		t.Error("category narrows the set")
	}
}
