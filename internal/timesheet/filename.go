package timesheet

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/andy/tallysheet/internal/domain"
)

const fallbackClientName = "client"

// SanitizeClientName turns a display name into a filename-safe token. Letters,
// digits, '-' and '_' survive; everything else becomes '_'. Leading and
// trailing underscores are trimmed, and an empty result becomes "client".
func SanitizeClientName(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	safe := strings.Trim(b.String(), "_")
	if safe == "" {
		return fallbackClientName
	}
	return safe
}

// Filename suggests a download name for a timesheet of the given period.
func Filename(clientName string, period domain.Period) string {
	safe := SanitizeClientName(clientName)

	switch p := period.(type) {
	case domain.RangePeriod:
		return safe + "_" + p.StartDate() + "_to_" + p.EndDate() + "_timesheet.csv"
	case domain.MonthlyPeriod:
		return safe + "_" + p.Month.String() + "_" + strconv.Itoa(p.Year) + "_timesheet.csv"
	}
	return safe + "_timesheet.csv"
}
