package timesheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/tallysheet/internal/domain"
)

func TestSanitizeClientName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp", "Acme_Corp"},
		{"Acme Corp.", "Acme_Corp"},
		{"  spaced  ", "spaced"},
		{"a/b\\c:d", "a_b_c_d"},
		{"keep-dash_and_underscore", "keep-dash_and_underscore"},
		{"!!!", "client"},
		{"", "client"},
		{"Café", "Café"},
		// decomposed e + combining acute normalises to the same result
		{"Cafe\u0301", "Café"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeClientName(tt.in))
		})
	}
}

func TestFilename(t *testing.T) {
	rp, err := ResolveRange(RangeRequest{ClientID: 1, StartDate: "2024-01-01", EndDate: "2024-01-31", Timezone: "America/New_York"})
	require.NoError(t, err)

	assert.Equal(t, "Acme_Corp_2024-01-01_to_2024-01-31_timesheet.csv", Filename("Acme Corp", rp))
	assert.Equal(t, "Acme_Corp_March_2024_timesheet.csv", Filename("Acme Corp", domain.MonthlyPeriod{Month: time.March, Year: 2024}))
	assert.Equal(t, "client_December_2025_timesheet.csv", Filename("???", domain.MonthlyPeriod{Month: time.December, Year: 2025}))
}
