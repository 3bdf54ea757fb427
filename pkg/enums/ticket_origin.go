package enums

import "fmt"

// TicketOrigin records which side of the platform sold a ticket.
type TicketOrigin string

const (
	// TicketOriginClient means the buyer purchased through the app directly.
	TicketOriginClient TicketOrigin = "client"
	// TicketOriginSeller means a seller recorded the sale on behalf of a buyer.
	TicketOriginSeller TicketOrigin = "seller"
)

var validTicketOrigins = []TicketOrigin{
	TicketOriginClient,
	TicketOriginSeller,
}

// String implements fmt.Stringer.
func (o TicketOrigin) String() string {
	return string(o)
}

// IsValid reports whether the value is known.
func (o TicketOrigin) IsValid() bool {
	for _, candidate := range validTicketOrigins {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseTicketOrigin converts raw input into a TicketOrigin.
func ParseTicketOrigin(value string) (TicketOrigin, error) {
	for _, candidate := range validTicketOrigins {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket origin %q", value)
}
