package offer

import (
	"strings"
	"time"

	"github.com/nurpe/oil-tenders/internal/model"
)

type Status string

const (
	StatusTendered Status = "tendered"
	StatusActive   Status = "active"
	StatusAwarded  Status = "awarded"
)

// Classify derives the lifecycle status. A textual status always wins over
// the boolean awarded flag, which is only consulted when the text says nothing.
func Classify(o model.Offer) Status {
	text, _ := PickString(o, StatusKeys)
	s := strings.ToLower(text)

	if strings.Contains(s, "award") || s == "adjudicada" || s == "awarded" {
		return StatusAwarded
	}
	if strings.Contains(s, "open") || strings.Contains(s, "active") || strings.Contains(s, "ongoing") {
		return StatusActive
	}
	if flag, ok := o.Get("awarded").Flag(); ok && flag {
		return StatusAwarded
	}
	return StatusTendered
}

// Timestamp formats t the way deadlines are compared: UTC ISO 8601 with
// millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// IsLive reports whether the offer is active or its deadline is still ahead
// of now (an ISO timestamp, see Timestamp).
func IsLive(o model.Offer, status Status, now string) bool {
	if status == StatusActive {
		return true
	}
	deadline, ok := PickDateISO(o, DeadlineKeys)
	return ok && deadline > now
}
