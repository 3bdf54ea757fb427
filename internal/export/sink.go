package export

import (
	"context"
	"time"

	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"github.com/bolao-platform/bolao-backend/pkg/enums"
)

// clientAppLabel marks rows for tickets bought directly in the app, with no
// seller attribution.
const clientAppLabel = "Cliente (App)"

// Row is the flattened ledger line emitted for every issued ticket.
type Row struct {
	Timestamp      time.Time          `json:"timestamp"`
	TicketID       string             `json:"ticket_id"`
	BuyerName      string             `json:"buyer_name"`
	SellerUsername string             `json:"seller_username"`
	Numbers        []int64            `json:"numbers"`
	Status         enums.TicketStatus `json:"status"`
}

// Sink delivers one row to the external ledger.
type Sink interface {
	Publish(ctx context.Context, row Row) error
}

// RowFromTicket flattens a ticket into its ledger representation.
func RowFromTicket(ticket models.Ticket) Row {
	seller := clientAppLabel
	if ticket.SellerUsername != nil && *ticket.SellerUsername != "" {
		seller = *ticket.SellerUsername
	}
	return Row{
		Timestamp:      ticket.CreatedAt,
		TicketID:       ticket.ID.String(),
		BuyerName:      ticket.BuyerName,
		SellerUsername: seller,
		Numbers:        ticket.Numbers,
		Status:         ticket.Status,
	}
}
