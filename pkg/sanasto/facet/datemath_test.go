package facet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 2, 29, 10, 30, 15, 250*int(time.Millisecond), time.UTC)
	tests := []struct {
		in   string
		want string
	}{
		{"2020-05-17T08:09:10Z", "2020-05-17T08:09:10Z"},
		{"2020-05-17T08:09:10.5Z", "2020-05-17T08:09:10.5Z"},
		{"2020-05-17T08:09:10.120Z", "2020-05-17T08:09:10.12Z"},
		{"2020-05-17", "2020-05-17T00:00:00Z"},
		{"20200517", "2020-05-17T00:00:00Z"},
		{"20200517+1DAY", "2020-05-18T00:00:00Z"},
		{"-0044-03-15", "-0044-03-15T00:00:00Z"},
		{"NOW", "2024-02-29T10:30:15.25Z"},
		{"NOW/DAY", "2024-02-29T00:00:00Z"},
		{"NOW/YEAR+6MONTHS", "2024-07-01T00:00:00Z"},
		{"NOW+1YEAR", "2025-02-28T10:30:15.25Z"},
		{"NOW/SECOND-90MINUTES", "2024-02-29T09:00:15Z"},
		{"2020-01-31T00:00:00Z+1MONTH", "2020-02-29T00:00:00Z"},
		{"2021-01-31+1MONTH", "2021-02-28T00:00:00Z"},
		{"2020-01-01+1DATE", "2020-01-02T00:00:00Z"},
		{"2020-01-01T00:00:00Z-1MILLI", "2019-12-31T23:59:59.999Z"},
		{"2020-01-01T00:00:00Z+2HOURS+30SECONDS", "2020-01-01T02:00:30Z"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in, now)
			require.NoError(t, err)
			require.Equal(t, tt.want, formatDate(got))
		})
	}
}

func TestParseDateErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"yesterday",
		"2020-13-01",
		"2021-02-29",
		"2020-01-01T25:00:00Z",
		"2020-01-01T10:00:00",
		"2020-01-01+1FORTNIGHT",
		"2020-01-01+DAY",
		"2020-01-01/",
		"NOW*2",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := parseDate(in, time.Now())
			require.Error(t, err)
		})
	}
}

func TestAddMonthsAcrossYears(t *testing.T) {
	start := time.Date(2020, 11, 30, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "2021-02-28T00:00:00Z", formatDate(addMonths(start, 3)))
	require.Equal(t, "2019-11-30T00:00:00Z", formatDate(addMonths(start, -12)))
	require.Equal(t, "2020-02-29T00:00:00Z", formatDate(addMonths(start, -9)))
}
