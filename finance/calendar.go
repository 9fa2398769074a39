package finance

import "time"

// =============================================================================
// CALENDAR MATH - Month stepping with end-of-month clamping
// =============================================================================
// This file is the single source of truth for schedule date stepping.
// Nothing else in the engine re-implements month arithmetic.

// IsLeapYear applies the Gregorian rule: divisible by 4, not by 100
// unless also by 400.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in a month, leap-year aware.
func DaysInMonth(year int, month time.Month) int {
	if month == time.February && IsLeapYear(year) {
		return 29
	}
	return monthDays[month-1]
}

// AddMonths advances a date by n months, clamping the day to the last day
// of the target month instead of overflowing. Jan 31 + 1 month lands on
// Feb 28 (or Feb 29 in a leap year), never Mar 2-3.
func AddMonths(d Date, n int) Date {
	year := d.Year() + (int(d.Month())+n-1)/12
	month := time.Month((int(d.Month())+n-1)%12 + 1)
	day := d.Day()
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	return NewDate(year, month, day)
}

// AddInterval steps a date forward by one schedule period. For lump_sum
// the only payment is the terminal one, so the obligation end date is
// returned unconditionally.
func AddInterval(d Date, f Frequency, end Date) Date {
	if f == FrequencyLumpSum {
		return end
	}
	return AddMonths(d, f.StepMonths())
}
