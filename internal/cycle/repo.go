package cycle

import (
	"context"

	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists the immutable cycle history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	AppendSellerHistory(ctx context.Context, entries []models.SellerHistoryEntry) error
	AppendAdminHistory(ctx context.Context, entry *models.AdminHistoryEntry) error
	ListSellerHistory(ctx context.Context) ([]models.SellerHistoryEntry, error)
	ListAdminHistory(ctx context.Context) ([]models.AdminHistoryEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a history repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) AppendSellerHistory(ctx context.Context, entries []models.SellerHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *repository) AppendAdminHistory(ctx context.Context, entry *models.AdminHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListSellerHistory(ctx context.Context) ([]models.SellerHistoryEntry, error) {
	var entries []models.SellerHistoryEntry
	if err := r.db.WithContext(ctx).
		Order("closed_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListAdminHistory(ctx context.Context) ([]models.AdminHistoryEntry, error) {
	var entries []models.AdminHistoryEntry
	if err := r.db.WithContext(ctx).
		Order("closed_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
