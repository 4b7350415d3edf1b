// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import "time"

// DayKeyLayout is the calendar-date format used throughout the system.
const DayKeyLayout = "2006-01-02"

// ParseDayKey parses a YYYY-MM-DD calendar date in UTC.
func ParseDayKey(dayKey string) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout, dayKey, time.UTC)
}

// IsDayKey reports whether dayKey is a well-formed YYYY-MM-DD date.
func IsDayKey(dayKey string) bool {
	_, err := ParseDayKey(dayKey)
	return err == nil
}

// AddDays shifts a day key by the given number of calendar days.
// Returns the empty string if dayKey is malformed.
func AddDays(dayKey string, days int) string {
	t, err := ParseDayKey(dayKey)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, days).Format(DayKeyLayout)
}
