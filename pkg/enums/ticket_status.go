package enums

import "fmt"

// TicketStatus is the lifecycle state of a ticket within a sales cycle.
type TicketStatus string

const (
	// TicketStatusActive marks a ticket still eligible for future draws.
	TicketStatusActive TicketStatus = "active"
	// TicketStatusWinning marks a ticket whose ten picks are fully covered
	// by the current draw pool.
	TicketStatusWinning TicketStatus = "winning"
	// TicketStatusUnpaid is an administrative hold; re-evaluation never
	// assigns or clears it.
	TicketStatusUnpaid TicketStatus = "unpaid"
	// TicketStatusExpired is terminal and assigned only by a cycle reset.
	TicketStatusExpired TicketStatus = "expired"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusActive,
	TicketStatusWinning,
	TicketStatusUnpaid,
	TicketStatusExpired,
}

// String implements fmt.Stringer.
func (s TicketStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s TicketStatus) IsValid() bool {
	for _, candidate := range validTicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsLive reports whether the ticket still belongs to the running cycle.
func (s TicketStatus) IsLive() bool {
	return s == TicketStatusActive || s == TicketStatusWinning || s == TicketStatusUnpaid
}

// ParseTicketStatus converts raw input into a TicketStatus.
func ParseTicketStatus(value string) (TicketStatus, error) {
	for _, candidate := range validTicketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket status %q", value)
}
