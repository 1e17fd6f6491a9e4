// Package export serializes normalized prizes into JSON documents and CSV
// text for the batch exporter.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/nobel-prize-cache/pkg/prize"
	"github.com/Sternrassler/nobel-prize-cache/pkg/stats"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or csv)", s)
	}
}

// timestampLayout matches the ISO-8601 form with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Metadata describes how a document was produced.
type Metadata struct {
	Timestamp  string         `json:"timestamp"`
	ConfigUsed map[string]any `json:"configUsed"`
}

// Document is the JSON export envelope.
type Document struct {
	Metadata Metadata          `json:"metadata"`
	Stats    *stats.Statistics `json:"stats,omitempty"`
	RawData  []prize.Prize     `json:"rawData"`
}

// NewDocument wraps prizes with metadata. st may be nil when the export does
// not come from the aggregation path.
func NewDocument(prizes []prize.Prize, params url.Values, st *stats.Statistics, now time.Time) Document {
	if prizes == nil {
		prizes = []prize.Prize{}
	}
	return Document{
		Metadata: Metadata{
			Timestamp:  now.UTC().Format(timestampLayout),
			ConfigUsed: flattenParams(params),
		},
		Stats:   st,
		RawData: prizes,
	}
}

// flattenParams turns single-valued parameters into plain strings and keeps
// repeated parameters as lists.
func flattenParams(params url.Values) map[string]any {
	out := make(map[string]any, len(params))
	for k, vs := range params {
		switch len(vs) {
		case 0:
		case 1:
			out[k] = vs[0]
		default:
			out[k] = append([]string(nil), vs...)
		}
	}
	return out
}

// WriteJSON writes the document as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json document: %w", err)
	}
	return nil
}

// CSVPath derives the CSV output path by substituting the extension.
func CSVPath(path string) string {
	ext := filepath.Ext(path)
	if ext == ".csv" {
		return path
	}
	return strings.TrimSuffix(path, ext) + ".csv"
}

// Save writes doc to dir/file in the given format, creating dir if needed.
// For CSV the extension of file is replaced. It returns the written path.
func Save(dir, file string, format Format, doc Document) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, file)
	if format == FormatCSV {
		path = CSVPath(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}

	switch format {
	case FormatCSV:
		err = WriteCSV(f, doc.RawData)
	default:
		err = WriteJSON(f, doc)
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output file: %w", cerr)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
