package roundtrip

import "strings"

// MismatchError is returned when a value did not survive the round trip. It
// carries every discrepancy record, in the order they were found.
type MismatchError struct {
	Records []string
}

func (e *MismatchError) Error() string {
	return strings.Join(e.Records, "\n")
}
