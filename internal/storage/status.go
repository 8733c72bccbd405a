package storage

import "fmt"

// Status is the delivery state of a listing for one recipient. Every row
// starts as SENT; VIEWED and NOT_INTERESTED are terminal.
type Status string

const (
	StatusSent          Status = "SENT"
	StatusViewed        Status = "VIEWED"
	StatusNotInterested Status = "NOT_INTERESTED"
)

var validTransitions = map[Status][]Status{
	StatusSent: {StatusViewed, StatusNotInterested},
}

// ParseStatus validates a stored status value.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusSent, StatusViewed, StatusNotInterested:
		return s, nil
	default:
		return "", fmt.Errorf("unknown delivery status %q", raw)
	}
}

// CanTransition reports whether from may change to to.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
