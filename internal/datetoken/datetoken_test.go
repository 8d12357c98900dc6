package datetoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	tokens := []string{
		"10/03/2025 14:30",
		"01/01/2000 00:00",
		"31/12/2099 23:59",
		"05/11/2026 09:05",
	}
	for _, s := range tokens {
		tok, err := Parse(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, tok.String())
	}
}

func TestParseRejectsMalformedTokens(t *testing.T) {
	bad := []string{
		"",
		"10/03/2025",
		"14:30",
		"10-03-2025 14:30",
		"10/03/2025 1430",
		"dd/MM/yyyy HH:mm",
		"10/03/abcd 14:30",
	}
	for _, s := range bad {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrBadToken, s)
	}
}

func TestParsePassesOutOfRangeFieldsThrough(t *testing.T) {
	// The backend never validates ranges; neither do we.
	tok, err := Parse("32/13/2025 25:61")
	require.NoError(t, err)
	assert.Equal(t, 32, tok.Day)
	assert.Equal(t, 13, tok.Month)
}

func TestDateFieldOrderIsDayMonthYear(t *testing.T) {
	// 10/03 must mean March 10th, never October 3rd. Both fields are
	// <= 12 so an inverted constructor would still produce a valid,
	// silently wrong date.
	tok, err := Parse("10/03/2025 08:00")
	require.NoError(t, err)

	d := tok.Date()
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 10, d.Day())
}

func TestDaysUntilSignAndClamp(t *testing.T) {
	now := time.Date(2025, time.March, 8, 12, 0, 0, 0, time.Local)

	future, err := DaysUntil("10/03/2025 18:00", now)
	require.NoError(t, err)
	assert.Equal(t, 2, future)

	past, err := DaysUntil("01/03/2025 18:00", now)
	require.NoError(t, err)
	assert.Negative(t, past)

	clamped, err := DaysLeft("01/03/2025 18:00", now)
	require.NoError(t, err)
	assert.Equal(t, 0, clamped)

	left, err := DaysLeft("10/03/2025 18:00", now)
	require.NoError(t, err)
	assert.Equal(t, 2, left)
}

func TestFromInput(t *testing.T) {
	cases := map[string]string{
		"2025-03-10T14:30": "10/03/2025 14:30",
		"2025-01-02T09:05": "02/01/2025 09:05",
	}
	for in, want := range cases {
		got, err := FromInput(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := FromInput("2025-03-10 14:30")
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestSortable(t *testing.T) {
	tok, err := Parse("05/11/2026 09:05")
	require.NoError(t, err)
	assert.Equal(t, "2026-11-05T09:05:00", tok.Sortable())
}

func TestFormat(t *testing.T) {
	ts := time.Date(2025, time.March, 10, 14, 30, 0, 0, time.Local)
	assert.Equal(t, "10/03/2025 14:30", Format(ts))
}
