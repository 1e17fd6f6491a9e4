package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/nobel-prize-cache/pkg/prize"
)

// CSVHeader is the first line of every CSV export.
const CSVHeader = "Year,Category,Date Awarded,Prize Amount,Winners"

// winnerSeparator joins laureate names inside the Winners field.
const winnerSeparator = "; "

// CSV renders prizes as CSV text. Only the Winners column is quoted; the
// other columns are written as-is and are assumed not to contain commas.
func CSV(prizes []prize.Prize) string {
	var sb strings.Builder

	sb.WriteString(CSVHeader)
	sb.WriteString("\n")

	for _, p := range prizes {
		date := ""
		if p.DateAwarded != nil {
			date = *p.DateAwarded
		}
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%d,%s\n",
			p.Year,
			p.Category,
			date,
			p.PrizeAmount,
			quote(strings.Join(p.WinnerNames(), winnerSeparator)),
		))
	}

	return sb.String()
}

// WriteCSV writes CSV(prizes) to w.
func WriteCSV(w io.Writer, prizes []prize.Prize) error {
	if _, err := io.WriteString(w, CSV(prizes)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// quote wraps s in double quotes, doubling any embedded quote.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
