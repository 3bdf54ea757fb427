package tickets

import "github.com/bolao-platform/bolao-backend/pkg/enums"

// NextStatus applies the re-evaluation transition rule to one ticket.
//
// A ticket with a full set of picks that is completely covered by the pool
// becomes winning. A winning ticket whose coverage dropped (the pool shrank
// after an administrative draw correction) reverts to active. Unpaid and
// expired are owned by other operations and are never touched here, which
// makes the pass idempotent.
func NextStatus(current enums.TicketStatus, numbersLen, matches, pickCount int) enums.TicketStatus {
	switch current {
	case enums.TicketStatusUnpaid, enums.TicketStatusExpired:
		return current
	}
	if numbersLen == pickCount && matches == pickCount {
		return enums.TicketStatusWinning
	}
	if current == enums.TicketStatusWinning {
		return enums.TicketStatusActive
	}
	return current
}
