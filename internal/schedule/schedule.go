// Package schedule extracts a concrete point in time from free-form message
// text. An explicit date is handed to dateparse; everything else falls
// through a chain of relative-expression regexes resolved against a base
// time. All results are UTC.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	isoDateRe   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	slashDateRe = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)

	clockRe    = regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\s*(am|pm)?\b`)
	hourAmPmRe = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)
	atHourRe   = regexp.MustCompile(`\bat\s+(\d{1,2})\b`)

	inDurationRe = regexp.MustCompile(`\bin\s+(\d+)\s+(minute|minutes|min|mins|hour|hours|day|days|week|weeks)\b`)
)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// Parse resolves the first time expression in text against base. The second
// return value reports whether anything was found.
func Parse(text string, base time.Time) (time.Time, bool) {
	lower := strings.ToLower(text)
	base = base.UTC()

	// Pure durations resolve directly against the base instant.
	if m := inDurationRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		var d time.Duration
		switch {
		case strings.HasPrefix(m[2], "min"):
			d = time.Duration(n) * time.Minute
		case strings.HasPrefix(m[2], "hour"):
			d = time.Duration(n) * time.Hour
		case strings.HasPrefix(m[2], "day"):
			d = time.Duration(n) * 24 * time.Hour
		default:
			d = time.Duration(n) * 7 * 24 * time.Hour
		}
		return base.Add(d), true
	}

	day, dateFound := resolveDate(lower, base)
	hour, minute, timeFound := resolveClock(lower)

	if !dateFound && !timeFound {
		return time.Time{}, false
	}
	if !timeFound {
		// Date only: start of that day
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC), true
	}
	if !dateFound {
		day = base
		// A bare clock time already past today rolls to tomorrow
		candidate := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
		if candidate.Before(base) {
			candidate = candidate.Add(24 * time.Hour)
		}
		return candidate, true
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC), true
}

func resolveDate(lower string, base time.Time) (time.Time, bool) {
	// Explicit dates go through dateparse
	for _, re := range []*regexp.Regexp{isoDateRe, slashDateRe} {
		if m := re.FindString(lower); m != "" {
			if t, err := dateparse.ParseAny(m); err == nil {
				return t.UTC(), true
			}
		}
	}

	switch {
	case strings.Contains(lower, "tomorrow"):
		return base.Add(24 * time.Hour), true
	case strings.Contains(lower, "today"), strings.Contains(lower, "tonight"):
		return base, true
	case strings.Contains(lower, "next week"):
		return base.Add(7 * 24 * time.Hour), true
	}

	for name, wd := range weekdays {
		if strings.Contains(lower, name) {
			days := (int(wd) - int(base.Weekday()) + 7) % 7
			if days == 0 {
				days = 7
			}
			return base.Add(time.Duration(days) * 24 * time.Hour), true
		}
	}
	return base, false
}

func resolveClock(lower string) (hour, minute int, found bool) {
	if m := clockRe.FindStringSubmatch(lower); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		return adjustMeridiem(hour, m[3]), minute, true
	}
	if m := hourAmPmRe.FindStringSubmatch(lower); m != nil {
		hour, _ = strconv.Atoi(m[1])
		return adjustMeridiem(hour, m[2]), 0, true
	}
	if m := atHourRe.FindStringSubmatch(lower); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if hour <= 23 {
			return hour, 0, true
		}
	}
	return 0, 0, false
}

func adjustMeridiem(hour int, meridiem string) int {
	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}
