package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymclass/service-booking/internal/domain/gymclass"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestWindowPolicy_IsBookable(t *testing.T) {
	p := NewWindowPolicy()
	today := mustDate(t, "2026-10-19")

	tests := []struct {
		requested string
		want      bool
	}{
		{"2026-10-18", false},
		{"2026-10-19", true},
		{"2026-10-20", true},
		{"2026-11-02", true},
		{"2026-11-03", false},
	}
	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsBookable(today, mustDate(t, tt.requested)))
		})
	}

	assert.ErrorIs(t, p.Check(today, mustDate(t, "2026-11-03")), ErrInvalidBookingDate)
	assert.NoError(t, p.Check(today, mustDate(t, "2026-11-02")))
}

func TestDateOf_UsesCalendarDateInLocation(t *testing.T) {
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	// 20:00 UTC on the 19th is already the 20th in Sydney.
	now := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, mustDate(t, "2026-10-20"), DateOf(now, loc))
	assert.Equal(t, mustDate(t, "2026-10-19"), DateOf(now, time.UTC))

	// Late in the evening, a booking for today still counts as zero days ahead.
	p := NewWindowPolicy()
	assert.True(t, p.IsBookable(DateOf(now, time.UTC), mustDate(t, "2026-10-19")))
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("19/10/2026")
	require.Error(t, err)
}

func TestCancellationPolicy_Classify(t *testing.T) {
	p := NewCancellationPolicy(time.UTC)
	date := mustDate(t, "2026-10-20")
	start := gymclass.Clock{Hour: 7}
	classStart := time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want CancellationKind
	}{
		{"48 hours before", classStart.Add(-48 * time.Hour), CancellationEarly},
		{"just over 24 hours before", classStart.Add(-24*time.Hour - time.Second), CancellationEarly},
		{"exactly 24 hours before", classStart.Add(-24 * time.Hour), CancellationLate},
		{"23 hours before", classStart.Add(-23 * time.Hour), CancellationLate},
		{"one minute before", classStart.Add(-time.Minute), CancellationLate},
		{"at start", classStart, CancellationEarly},
		{"after start", classStart.Add(time.Hour), CancellationEarly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Classify(date, start, tt.now))
		})
	}
}

func TestCancellationPolicy_Classify_Location(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	p := NewCancellationPolicy(loc)

	// 07:00 in New York on 2026-10-20 is 11:00 UTC.
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, CancellationLate, p.Classify(mustDate(t, "2026-10-20"), gymclass.Clock{Hour: 7}, now))
	assert.Equal(t, CancellationEarly, p.Classify(mustDate(t, "2026-10-20"), gymclass.Clock{Hour: 7}, now.Add(-2*time.Hour)))
}
