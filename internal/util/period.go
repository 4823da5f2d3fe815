package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthKey formats a year/month pair as a period key, e.g. "2025-03"
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// ParseMonthKey parses a "YYYY-MM" period key into a year and month
func ParseMonthKey(key string) (int, time.Month, error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid period %q: expected YYYY-MM", key)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid period %q: %w", key, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid period %q: %w", key, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid period %q: month out of range", key)
	}
	return year, time.Month(month), nil
}

// MonthRange returns the first and last day of the given month (both inclusive)
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

// QuarterOf returns the trimester (1-4) containing the given month
func QuarterOf(month time.Month) int {
	return (int(month)-1)/3 + 1
}

// QuarterRange returns the first and last day of the given trimester (both inclusive)
func QuarterRange(year, trimester int) (time.Time, time.Time) {
	firstMonth := time.Month((trimester-1)*3 + 1)
	start := time.Date(year, firstMonth, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, firstMonth+3, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// CalculateActualDate returns the actual date for a target day in a given month,
// handling months with fewer days (e.g., day 31 in February returns Feb 28/29)
func CalculateActualDate(year int, month time.Month, targetDay int) time.Time {
	// Get last day of month by going to day 0 of next month
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)
}
