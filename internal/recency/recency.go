package recency

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// historicalAgeDays is the sentinel age assigned to items matching a
// historical-indicator pattern when the exact age is indeterminate.
const historicalAgeDays = 365

var historicalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`hace\s+\d+\s+años?`),
	regexp.MustCompile(`hace\s+\d+\s+días?`),
	regexp.MustCompile(`hace\s+\d+\s+meses?`),
	regexp.MustCompile(`hace\s+una\s+década`),
	regexp.MustCompile(`hace\s+un\s+mes`),
	regexp.MustCompile(`en\s+\d{4}`),
	regexp.MustCompile(`recordamos`),
	regexp.MustCompile(`aniversario`),
	regexp.MustCompile(`en\s+el\s+pasado`),
	regexp.MustCompile(`así\s+fue`),
	regexp.MustCompile(`revelan\s+detalles`),
}

var (
	minutesAgoPattern = regexp.MustCompile(`hace\s+(\d+)\s+minutos?`)
	hoursAgoPattern   = regexp.MustCompile(`hace\s+(\d+)\s+horas?`)
	oneHourPattern    = regexp.MustCompile(`hace\s+una\s+hora`)
	momentsPattern    = regexp.MustCompile(`hace\s+(?:un\s+)?momentos?`)
	clockTimePattern  = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// Filter decides whether an item's implied publication time falls within
// the allowed freshness window.
type Filter struct {
	maxAge time.Duration
}

func NewFilter(maxAgeHours int) *Filter {
	if maxAgeHours <= 0 {
		maxAgeHours = 1
	}
	return &Filter{maxAge: time.Duration(maxAgeHours) * time.Hour}
}

// IsRecent scans text for temporal evidence and checks the inferred
// publication time against the freshness window. Historical indicators
// force rejection. Absence of any time phrase is not grounds for
// rejection; such items pass as recent.
func (f *Filter) IsRecent(text string, now time.Time) (bool, string) {
	inferred := ExtractTime(text, now)
	if inferred == nil {
		return true, ""
	}

	age := now.Sub(*inferred)
	if age <= f.maxAge {
		return true, ""
	}

	return false, fmt.Sprintf("noticia antigua (%.1f horas)", age.Hours())
}

// ExtractTime infers a publication timestamp from relative or absolute
// time phrases. Historical indicators return a timestamp one year back.
// A bare clock time is assumed to be today unless it lies in the future,
// in which case it is taken as yesterday. Returns nil when the text
// carries no temporal evidence.
func ExtractTime(text string, now time.Time) *time.Time {
	lowered := strings.ToLower(text)

	for _, pattern := range historicalPatterns {
		if pattern.MatchString(lowered) {
			t := now.AddDate(0, 0, -historicalAgeDays)
			return &t
		}
	}

	if m := minutesAgoPattern.FindStringSubmatch(lowered); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		t := now.Add(-time.Duration(minutes) * time.Minute)
		return &t
	}

	if m := hoursAgoPattern.FindStringSubmatch(lowered); m != nil {
		hours, _ := strconv.Atoi(m[1])
		t := now.Add(-time.Duration(hours) * time.Hour)
		return &t
	}

	if oneHourPattern.MatchString(lowered) {
		t := now.Add(-time.Hour)
		return &t
	}

	if momentsPattern.MatchString(lowered) {
		t := now.Add(-5 * time.Minute)
		return &t
	}

	if m := clockTimePattern.FindStringSubmatch(lowered); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if t.After(now) {
				t = t.AddDate(0, 0, -1)
			}
			return &t
		}
	}

	return nil
}
