package model

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// GenerateToken creates a new secure bearer token.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// MonthsBetween returns the number of whole calendar months between from and
// to, ignoring the day component. A student enrolled in January queried in
// March owes charges for 3 months (MonthsBetween + 1 billing periods).
func MonthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// FirstOfMonth truncates t to the first day of its month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
