package draws

import (
	"context"

	"github.com/bolao-platform/bolao-backend/internal/multiset"
	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for draws and derives the cumulative pool.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, draw *models.Draw) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Draw, error)
	ListAll(ctx context.Context) ([]models.Draw, error)
	Update(ctx context.Context, draw *models.Draw) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
	Pool(ctx context.Context, tx *gorm.DB) (map[int64]int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a draw repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, draw *models.Draw) error {
	return r.db.WithContext(ctx).Create(draw).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Draw, error) {
	var draw models.Draw
	if err := r.db.WithContext(ctx).First(&draw, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &draw, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.Draw, error) {
	var draws []models.Draw
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&draws).Error; err != nil {
		return nil, err
	}
	return draws, nil
}

func (r *repository) Update(ctx context.Context, draw *models.Draw) error {
	return r.db.WithContext(ctx).Save(draw).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Draw{}, "id = ?", id).Error
}

func (r *repository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Draw{})
	return result.RowsAffected, result.Error
}

// Pool folds every stored draw into one frequency map. When tx is non-nil the
// read happens inside it, giving callers a snapshot consistent with their own
// mutations.
func (r *repository) Pool(ctx context.Context, tx *gorm.DB) (map[int64]int, error) {
	repo := r
	if tx != nil {
		repo = &repository{db: tx}
	}
	draws, err := repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	pool := map[int64]int{}
	for _, draw := range draws {
		multiset.Accumulate(pool, draw.Numbers)
	}
	return pool, nil
}
