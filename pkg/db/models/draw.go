package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Draw is one administrator-registered set of drawn numbers. Draws accumulate
// for the whole cycle; the matching pool is the multiset union of all of them.
type Draw struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      *string       `gorm:"column:name" json:"name,omitempty"`
	Numbers   pq.Int64Array `gorm:"column:numbers;type:integer[];not null" json:"numbers"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
