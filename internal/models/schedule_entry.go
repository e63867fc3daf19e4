package models

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// APIHeadHunter is the catalog API label entries carry by default. It is
// the only API the crawler implements.
const APIHeadHunter = "hh"

// timeOfDayPattern is the strict 24-hour HH:MM format accepted in timetable
// entries. Single-digit hours ("9:30") are rejected on purpose so the file
// stays canonical and lexical ordering matches chronological ordering.
var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ScheduleEntry is a persisted "run this query at this time of day" record.
// The JSON field names are the timetable file format.
type ScheduleEntry struct {
	Time  string `json:"time"`
	Query string `json:"query"`
	API   string `json:"api,omitempty"`
}

// Validate checks the entry's time of day. Returns a tagged error with
// ErrMissingTime or ErrWrongTimeFormat so callers can distinguish the two.
func (e ScheduleEntry) Validate() error {
	if e.Time == "" {
		return NewError(ErrMissingTime, "schedule entry %q has no time", e.Query)
	}
	if !timeOfDayPattern.MatchString(e.Time) {
		return NewError(ErrWrongTimeFormat, "time %q is not HH:MM", e.Time)
	}
	return nil
}

// Catalog returns the API label, defaulting to APIHeadHunter when the
// entry does not name one.
func (e ScheduleEntry) Catalog() string {
	if e.API == "" {
		return APIHeadHunter
	}
	return e.API
}

// Matches reports whether other refers to the same scheduled run. Entries
// are identified by their (query, time) pair; the API label is not part of
// the identity.
func (e ScheduleEntry) Matches(other ScheduleEntry) bool {
	return e.Query == other.Query && e.Time == other.Time
}

// TimeOfDay is a wall-clock time within a day, minute resolution.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a strict HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := timeOfDayPattern.FindStringSubmatch(s)
	if m == nil {
		return TimeOfDay{}, NewError(ErrWrongTimeFormat, "time %q is not HH:MM", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// MinuteOfDay returns the offset from midnight in minutes.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// Elapsed reports whether t has been reached within the day of instant ts.
func (t TimeOfDay) Elapsed(ts time.Time) bool {
	return t.MinuteOfDay() <= ts.Hour()*60+ts.Minute()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
