package tickets

import (
	"context"

	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"github.com/bolao-platform/bolao-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for tickets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ticket *models.Ticket) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	ListByStatuses(ctx context.Context, statuses ...enums.TicketStatus) ([]models.Ticket, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Ticket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TicketStatus) error
	BulkUpdateStatus(ctx context.Context, from []enums.TicketStatus, to enums.TicketStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ticket repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) ListByStatuses(ctx context.Context, statuses ...enums.TicketStatus) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *repository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", accountID, accountID).
		Order("created_at DESC").
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TicketStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) BulkUpdateStatus(ctx context.Context, from []enums.TicketStatus, to enums.TicketStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("status IN ?", from).
		Update("status", to)
	return result.RowsAffected, result.Error
}
