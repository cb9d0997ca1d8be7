package api

import "time"

// LocalDate formats t as the local calendar date, YYYY-MM-DD. The server
// keys days by the user's wall clock; truncating a UTC timestamp instead
// would file meals logged near midnight under the wrong day in any
// non-UTC timezone.
func LocalDate(t time.Time) string {
	return t.Format("2006-01-02")
}
