package export

import (
	"context"
	"fmt"

	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
)

// Notifier pushes issued tickets to the export sink on a best-effort basis.
// Failures are logged and swallowed; a broken ledger must never undo or block
// an already-committed sale.
type Notifier struct {
	sink Sink
	logg *logger.Logger
}

// NewNotifier wires the export notifier. A nil sink yields a no-op notifier.
func NewNotifier(sink Sink, logg *logger.Logger) *Notifier {
	return &Notifier{sink: sink, logg: logg}
}

// NotifyIssued exports one row per ticket. Safe to call on a nil receiver.
func (n *Notifier) NotifyIssued(ctx context.Context, tickets []models.Ticket) {
	if n == nil || n.sink == nil {
		return
	}
	for _, ticket := range tickets {
		if err := n.sink.Publish(ctx, RowFromTicket(ticket)); err != nil {
			if n.logg != nil {
				n.logg.Error(ctx, fmt.Sprintf("ticket export failed for %s", ticket.ID), err)
			}
		}
	}
}
