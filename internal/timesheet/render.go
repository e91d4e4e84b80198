package timesheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/andy/tallysheet/internal/domain"
)

// ContentType is the media type of rendered timesheets.
const ContentType = "text/csv"

const generatedAtLayout = "2006-01-02 15:04:05"

var header = []string{
	"Date",
	"Start Time",
	"End Time",
	"Duration (HH:MM:SS)",
	"Duration (hrs)",
	"Description",
	"Rate",
	"Amount",
}

// Render writes the CSV body for an aggregated period. Range periods get a
// metadata block ahead of the table; monthly periods do not. Row dates and
// times are shown in the period's location. Lines end in CRLF (RFC 4180).
func Render(res *Result, period domain.Period, clientName string, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	loc := period.Location()

	if rp, ok := period.(domain.RangePeriod); ok {
		meta := [][]string{
			{"Client", clientName},
			{"Period Start", rp.StartDate()},
			{"Period End", rp.EndDate()},
			{"Timezone", rp.TimezoneName()},
			{"Generated At (UTC)", generatedAt.UTC().Format(generatedAtLayout)},
			{},
		}
		if err := w.WriteAll(meta); err != nil {
			return nil, fmt.Errorf("failed to write metadata: %w", err)
		}
	}

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	rate := FormatMoney(res.Rate)
	for _, row := range res.Rows {
		start := row.Start.In(loc)
		end := row.End.In(loc)
		record := []string{
			start.Format("2006-01-02"),
			start.Format("15:04:05"),
			end.Format("15:04:05"),
			FormatHMS(row.Seconds),
			FormatHours(row.Hours),
			row.Notes,
			rate,
			FormatMoney(row.Amount),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write row for entry %d: %w", row.EntryID, err)
		}
	}

	totals := []string{
		"",
		"",
		"Total:",
		FormatHMS(res.TotalSeconds),
		FormatHours(res.TotalHours()),
		"",
		"",
		FormatMoney(res.TotalAmount),
	}
	if err := w.Write(totals); err != nil {
		return nil, fmt.Errorf("failed to write totals: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// FormatHMS renders seconds as HH:MM:SS. Hours are not capped at 99.
func FormatHMS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatHours renders hours with 4 decimal places.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 4, 64)
}

// FormatMoney renders a currency figure with 2 decimal places.
func FormatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
