package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerHistoryEntry is an immutable per-seller snapshot appended when a
// cycle closes. Rows are never mutated after insert.
type SellerHistoryEntry struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SellerID       uuid.UUID       `gorm:"column:seller_id;type:uuid;not null" json:"seller_id"`
	SellerUsername string          `gorm:"column:seller_username;not null" json:"seller_username"`
	ActiveTickets  int             `gorm:"column:active_tickets;not null" json:"active_tickets"`
	Revenue        decimal.Decimal `gorm:"column:revenue;type:numeric(12,2);not null" json:"revenue"`
	Commission     decimal.Decimal `gorm:"column:commission;type:numeric(12,2);not null" json:"commission"`
	ClosedAt       time.Time       `gorm:"column:closed_at;autoCreateTime" json:"closed_at"`
}

// AdminHistoryEntry is the platform-wide financial snapshot for one closed
// cycle. Appended only when the cycle moved money.
type AdminHistoryEntry struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TotalRevenue     decimal.Decimal `gorm:"column:total_revenue;type:numeric(12,2);not null" json:"total_revenue"`
	SellerCommission decimal.Decimal `gorm:"column:seller_commission;type:numeric(12,2);not null" json:"seller_commission"`
	OwnerCommission  decimal.Decimal `gorm:"column:owner_commission;type:numeric(12,2);not null" json:"owner_commission"`
	PrizePool        decimal.Decimal `gorm:"column:prize_pool;type:numeric(12,2);not null" json:"prize_pool"`
	ClientTickets    int             `gorm:"column:client_tickets;not null" json:"client_tickets"`
	SellerTickets    int             `gorm:"column:seller_tickets;not null" json:"seller_tickets"`
	ClosedAt         time.Time       `gorm:"column:closed_at;autoCreateTime" json:"closed_at"`
}
