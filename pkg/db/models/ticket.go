package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bolao-platform/bolao-backend/pkg/enums"
)

// Ticket is one sold pick of ten numbers. Tickets are created only by the
// settlement transactor, never deleted, and leave the cycle as "expired".
type Ticket struct {
	ID      uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Numbers pq.Int64Array      `gorm:"column:numbers;type:integer[];not null" json:"numbers"`
	Status  enums.TicketStatus `gorm:"column:status;type:text;not null;default:'active'" json:"status"`

	// Either BuyerID (client purchase) or SellerID+SellerUsername (seller
	// recorded sale) is set. BuyerName is always present for display.
	BuyerName      string     `gorm:"column:buyer_name;not null" json:"buyer_name"`
	BuyerID        *uuid.UUID `gorm:"column:buyer_id;type:uuid" json:"buyer_id,omitempty"`
	SellerID       *uuid.UUID `gorm:"column:seller_id;type:uuid" json:"seller_id,omitempty"`
	SellerUsername *string    `gorm:"column:seller_username" json:"seller_username,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Origin derives the sales channel from the attribution fields.
func (t Ticket) Origin() enums.TicketOrigin {
	if t.SellerID != nil {
		return enums.TicketOriginSeller
	}
	return enums.TicketOriginClient
}
