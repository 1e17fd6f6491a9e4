package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/nobel-prize-cache/pkg/prize"
	"github.com/Sternrassler/nobel-prize-cache/pkg/stats"
)

func strptr(s string) *string { return &s }

func samplePrizes() []prize.Prize {
	return []prize.Prize{
		{
			Year:        2020,
			Category:    "Physics",
			DateAwarded: strptr("2020-10-06"),
			PrizeAmount: 10000000,
			Winners: []prize.Laureate{
				{ID: "988", Name: "Roger Penrose", Motivation: "for black holes", Share: strptr("1/2")},
				{ID: "989", Name: "Andrea Ghez", Motivation: "for the galactic centre", Share: strptr("1/4")},
			},
		},
		{
			Year:        1940,
			Category:    "Physics",
			PrizeAmount: 0,
			Winners:     []prize.Laureate{},
		},
	}
}

func TestCSV_Layout(t *testing.T) {
	got := CSV(samplePrizes())

	want := CSVHeader + "\n" +
		`2020,Physics,2020-10-06,10000000,"Roger Penrose; Andrea Ghez"` + "\n" +
		`1940,Physics,,0,""` + "\n"
	assert.Equal(t, want, got)
}

func TestCSV_QuotesWinners(t *testing.T) {
	prizes := []prize.Prize{{
		Year:     1999,
		Category: "Literature",
		Winners:  []prize.Laureate{{Name: `O'Brien, "Bob"`}},
	}}

	got := CSV(prizes)

	assert.Contains(t, got, `"O'Brien, ""Bob"""`)

	// Standard CSV readers recover the original name.
	records, err := csv.NewReader(strings.NewReader(got)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `O'Brien, "Bob"`, records[1][4])
}

func TestCSV_Empty(t *testing.T) {
	assert.Equal(t, CSVHeader+"\n", CSV(nil))
}

func TestNewDocument(t *testing.T) {
	st := stats.Aggregate(samplePrizes())
	params := url.Values{"nobelPrizeYear": {"2020"}, "limit": {"100"}}
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	doc := NewDocument(samplePrizes(), params, &st, now)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, doc))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	meta := decoded["metadata"].(map[string]any)
	assert.Equal(t, "2024-03-01T12:30:00.000Z", meta["timestamp"])
	assert.Equal(t, map[string]any{"nobelPrizeYear": "2020", "limit": "100"}, meta["configUsed"])

	statsDoc := decoded["stats"].(map[string]any)
	assert.EqualValues(t, 2, statsDoc["totalPrizes"])
	assert.Len(t, decoded["rawData"], 2)
}

func TestNewDocument_WithoutStats(t *testing.T) {
	doc := NewDocument(nil, nil, nil, time.Now())

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, doc))

	assert.NotContains(t, buf.String(), `"stats"`)
	assert.Contains(t, buf.String(), `"rawData": []`)
}

func TestCSVPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"output/analysis_results.json", "output/analysis_results.csv"},
		{"results", "results.csv"},
		{"already.csv", "already.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CSVPath(tt.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	doc := NewDocument(samplePrizes(), nil, nil, time.Now())

	jsonPath, err := Save(dir, "results.json", FormatJSON, doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "results.json"), jsonPath)

	csvPath, err := Save(dir, "results.json", FormatCSV, doc)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "results.csv"), csvPath)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), CSVHeader))
}
