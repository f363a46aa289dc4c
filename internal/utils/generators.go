package utils

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

var hexIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// GenerateID returns a new 24-character hex identifier. All document ids in
// the store (users, events, bookings) use this format, and path parameters
// are validated against it before any lookup happens.
func GenerateID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// ValidID reports whether id is a well-formed 24-character hex identifier.
func ValidID(id string) bool {
	return hexIDPattern.MatchString(id)
}
