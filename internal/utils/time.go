package utils

import (
	"regexp"
	"time"
)

var eventTimePattern = regexp.MustCompile(`^([0-1]\d|2[0-3]):([0-5]\d):([0-5]\d)$`)

// ValidEventTime reports whether t is a well-formed HH:MM:SS clock time.
func ValidEventTime(t string) bool {
	return eventTimePattern.MatchString(t)
}

// ParseEventDate parses an event date supplied by a client. Dates come in
// either as full RFC 3339 timestamps or as plain YYYY-MM-DD days.
func ParseEventDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
