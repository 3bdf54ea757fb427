package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bolao-platform/bolao-backend/pkg/enums"
)

// Account is a platform user holding a spendable balance. Balance only moves
// inside a settlement transaction or an explicit administrative adjustment.
type Account struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string            `gorm:"column:name;not null" json:"name"`
	Username  string            `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Role      enums.AccountRole `gorm:"column:role;type:text;not null" json:"role"`
	Balance   decimal.Decimal   `gorm:"column:balance;type:numeric(12,2);not null;default:0" json:"balance"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
