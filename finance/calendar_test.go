package finance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/obligation-engine/finance"
)

// =============================================================================
// LEAP YEAR TESTS
// =============================================================================

func TestIsLeapYear(t *testing.T) {
	assert.True(t, finance.IsLeapYear(2024))  // divisible by 4
	assert.True(t, finance.IsLeapYear(2000))  // divisible by 400
	assert.False(t, finance.IsLeapYear(2025)) // not divisible by 4
	assert.False(t, finance.IsLeapYear(1900)) // century, not divisible by 400
	assert.False(t, finance.IsLeapYear(2100)) // century, not divisible by 400
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, finance.DaysInMonth(2024, time.February))
	assert.Equal(t, 28, finance.DaysInMonth(2025, time.February))
	assert.Equal(t, 31, finance.DaysInMonth(2025, time.January))
	assert.Equal(t, 30, finance.DaysInMonth(2025, time.April))
	assert.Equal(t, 31, finance.DaysInMonth(2025, time.December))
}

// =============================================================================
// MONTH STEPPING TESTS
// =============================================================================

func TestAddMonths_EndOfMonthClamping(t *testing.T) {
	// GIVEN: Jan 31 in a leap year
	// WHEN: Adding one month
	// THEN: Clamped to Feb 29, never overflowing into March
	got := finance.AddMonths(finance.NewDate(2024, time.January, 31), 1)
	assert.Equal(t, finance.NewDate(2024, time.February, 29), got)

	// Non-leap year clamps to Feb 28
	got = finance.AddMonths(finance.NewDate(2025, time.January, 31), 1)
	assert.Equal(t, finance.NewDate(2025, time.February, 28), got)

	// Mar 31 + 1 month clamps to Apr 30
	got = finance.AddMonths(finance.NewDate(2025, time.March, 31), 1)
	assert.Equal(t, finance.NewDate(2025, time.April, 30), got)
}

func TestAddMonths_NoClampNeeded(t *testing.T) {
	got := finance.AddMonths(finance.NewDate(2025, time.March, 15), 1)
	assert.Equal(t, finance.NewDate(2025, time.April, 15), got)
}

func TestAddMonths_YearBoundary(t *testing.T) {
	got := finance.AddMonths(finance.NewDate(2025, time.November, 30), 3)
	assert.Equal(t, finance.NewDate(2026, time.February, 28), got)

	got = finance.AddMonths(finance.NewDate(2025, time.December, 15), 1)
	assert.Equal(t, finance.NewDate(2026, time.January, 15), got)
}

func TestAddMonths_ClampDoesNotPropagate(t *testing.T) {
	// GIVEN: A date that was clamped to Feb 28
	// WHEN: Stepping again from day 28
	// THEN: The result stays on day 28; clamping applies per step, the
	//       original day-of-month is not remembered
	clamped := finance.AddMonths(finance.NewDate(2025, time.January, 31), 1)
	assert.Equal(t, finance.NewDate(2025, time.February, 28), clamped)

	got := finance.AddMonths(clamped, 1)
	assert.Equal(t, finance.NewDate(2025, time.March, 28), got)
}

// =============================================================================
// INTERVAL STEPPING TESTS
// =============================================================================

func TestAddInterval_Frequencies(t *testing.T) {
	start := finance.NewDate(2025, time.March, 31)
	end := finance.NewDate(2030, time.January, 1)

	assert.Equal(t, finance.NewDate(2025, time.April, 30),
		finance.AddInterval(start, finance.FrequencyMonthly, end))
	assert.Equal(t, finance.NewDate(2025, time.June, 30),
		finance.AddInterval(start, finance.FrequencyQuarterly, end))
	assert.Equal(t, finance.NewDate(2025, time.September, 30),
		finance.AddInterval(start, finance.FrequencySemiAnnually, end))
	assert.Equal(t, finance.NewDate(2026, time.March, 31),
		finance.AddInterval(start, finance.FrequencyAnnually, end))
}

func TestAddInterval_LumpSum_JumpsToEndDate(t *testing.T) {
	start := finance.NewDate(2025, time.March, 1)
	end := finance.NewDate(2027, time.August, 15)

	got := finance.AddInterval(start, finance.FrequencyLumpSum, end)
	assert.Equal(t, end, got)
}
