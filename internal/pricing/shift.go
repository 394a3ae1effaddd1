package pricing

import (
	"strings"
)

const (
	minutesPerDay = 24 * 60
	// Night work runs from 22:00 to 05:00.
	nightStart = 22 * 60
	nightEnd   = 5 * 60

	// Weeks per month used to turn a weekly schedule into monthly days.
	weeksPerMonth = 4.33
)

// weekdays maps accepted weekday tokens to a canonical day index (0 = Monday).
var weekdays = map[string]int{
	"MON": 0, "SEG": 0,
	"TUE": 1, "TER": 1,
	"WED": 2, "QUA": 2,
	"THU": 3, "QUI": 3,
	"FRI": 4, "SEX": 4,
	"SAT": 5, "SAB": 5,
	"SUN": 6, "DOM": 6,
}

// parseClock parses "HH:MM" into minutes after midnight.
func parseClock(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// NightHours returns the clock hours of a shift falling inside the
// 22:00-05:00 window. A shift whose end is not after its start wraps
// past midnight.
func NightHours(start, end string) float64 {
	s, ok := parseClock(start)
	if !ok {
		return 0
	}
	e, ok := parseClock(end)
	if !ok {
		return 0
	}
	if e <= s {
		e += minutesPerDay
	}

	// Windows laid out over the two calendar days a shift can touch.
	windows := [][2]int{
		{0, nightEnd},
		{nightStart, minutesPerDay + nightEnd},
		{minutesPerDay + nightStart, 2*minutesPerDay + nightEnd},
	}
	minutes := 0
	for _, w := range windows {
		minutes += overlap(s, e, w[0], w[1])
	}
	return float64(minutes) / 60
}

func overlap(s1, e1, s2, e2 int) int {
	lo := max(s1, s2)
	hi := min(e1, e2)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// distinctWorkDays counts the distinct valid weekday tokens.
func distinctWorkDays(days []string) int {
	seen := make(map[int]struct{}, len(days))
	for _, d := range days {
		if idx, ok := weekdays[strings.ToUpper(strings.TrimSpace(d))]; ok {
			seen[idx] = struct{}{}
		}
	}
	return len(seen)
}

// MonthlyWorkingDays approximates the working days per month of a weekly schedule.
func MonthlyWorkingDays(days []string) float64 {
	return float64(distinctWorkDays(days)) * weeksPerMonth
}
