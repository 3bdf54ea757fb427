package draws

import (
	"context"
	"errors"
	"testing"

	"github.com/bolao-platform/bolao-backend/internal/tickets"
	"github.com/bolao-platform/bolao-backend/pkg/config"
	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	pkgerrors "github.com/bolao-platform/bolao-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepo struct {
	draws map[uuid.UUID]*models.Draw
}

func newFakeRepo(draws ...*models.Draw) *fakeRepo {
	f := &fakeRepo{draws: map[uuid.UUID]*models.Draw{}}
	for _, d := range draws {
		f.draws[d.ID] = d
	}
	return f
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, draw *models.Draw) error {
	draw.ID = uuid.New()
	f.draws[draw.ID] = draw
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Draw, error) {
	draw, ok := f.draws[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return draw, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]models.Draw, error) {
	var out []models.Draw
	for _, d := range f.draws {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, draw *models.Draw) error {
	f.draws[draw.ID] = draw
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.draws, id)
	return nil
}

func (f *fakeRepo) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(f.draws))
	f.draws = map[uuid.UUID]*models.Draw{}
	return n, nil
}

func (f *fakeRepo) Pool(ctx context.Context, tx *gorm.DB) (map[int64]int, error) {
	return map[int64]int{}, nil
}

type fakeReevaluator struct {
	calls int
	err   error
}

func (f *fakeReevaluator) Reevaluate(ctx context.Context, tx *gorm.DB) (tickets.ReevaluationSummary, error) {
	f.calls++
	return tickets.ReevaluationSummary{}, f.err
}

type fakeBoard struct {
	publishes int
	err       error
}

func (f *fakeBoard) Publish(ctx context.Context) error {
	f.publishes++
	return f.err
}

func testGameConfig() config.GameConfig {
	return config.GameConfig{PickCount: 10, MinValue: 1, MaxValue: 25, MaxRepeats: 4}
}

func newTestService(t *testing.T, repo Repository, reeval *fakeReevaluator, board *fakeBoard) Service {
	t.Helper()
	svc, err := NewService(fakeTxRunner{}, repo, reeval, board, testGameConfig(), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateRunsPipeline(t *testing.T) {
	repo := newFakeRepo()
	reeval := &fakeReevaluator{}
	board := &fakeBoard{}
	svc := newTestService(t, repo, reeval, board)

	draw, err := svc.Create(context.Background(), DrawInput{Numbers: []int64{5, 5, 9, 12, 3}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if draw.ID == uuid.Nil {
		t.Fatal("expected draw to be persisted")
	}
	if reeval.calls != 1 {
		t.Fatalf("expected one re-evaluation pass, got %d", reeval.calls)
	}
	if board.publishes != 1 {
		t.Fatalf("expected one board publish, got %d", board.publishes)
	}
}

func TestCreateRejectsBadSizes(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeReevaluator{}, &fakeBoard{})

	for _, numbers := range [][]int64{
		{},
		{1, 2, 3},
		{1, 2, 3, 4, 5, 6, 7},
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	} {
		if _, err := svc.Create(context.Background(), DrawInput{Numbers: numbers}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("size %d: expected validation error, got %v", len(numbers), err)
		}
	}
}

func TestCreateRejectsOutOfRangeValues(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeReevaluator{}, &fakeBoard{})

	_, err := svc.Create(context.Background(), DrawInput{Numbers: []int64{0, 26, 3, 4, 5}})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateDuplicatesAllowed(t *testing.T) {
	reeval := &fakeReevaluator{}
	svc := newTestService(t, newFakeRepo(), reeval, &fakeBoard{})

	if _, err := svc.Create(context.Background(), DrawInput{Numbers: []int64{7, 7, 7, 7, 7}}); err != nil {
		t.Fatalf("duplicate values inside one draw are legal: %v", err)
	}
}

func TestCreateAbortsWhenReevaluationFails(t *testing.T) {
	reeval := &fakeReevaluator{err: errors.New("boom")}
	board := &fakeBoard{}
	svc := newTestService(t, newFakeRepo(), reeval, board)

	if _, err := svc.Create(context.Background(), DrawInput{Numbers: []int64{1, 2, 3, 4, 5}}); err == nil {
		t.Fatal("expected error when re-evaluation fails")
	}
	if board.publishes != 0 {
		t.Fatal("board must not publish when the transaction failed")
	}
}

func TestCreateSurfacesPublishFailure(t *testing.T) {
	board := &fakeBoard{err: errors.New("redis down")}
	svc := newTestService(t, newFakeRepo(), &fakeReevaluator{}, board)

	_, err := svc.Create(context.Background(), DrawInput{Numbers: []int64{1, 2, 3, 4, 5}})
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestUpdateAndDeleteReevaluate(t *testing.T) {
	existing := &models.Draw{ID: uuid.New(), Numbers: []int64{1, 2, 3, 4, 5}}
	repo := newFakeRepo(existing)
	reeval := &fakeReevaluator{}
	board := &fakeBoard{}
	svc := newTestService(t, repo, reeval, board)

	if _, err := svc.Update(context.Background(), existing.ID, DrawInput{Numbers: []int64{6, 7, 8, 9, 10}}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := svc.Delete(context.Background(), existing.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if reeval.calls != 2 {
		t.Fatalf("expected two re-evaluation passes, got %d", reeval.calls)
	}
	if board.publishes != 2 {
		t.Fatalf("expected two board publishes, got %d", board.publishes)
	}
}

func TestUpdateMissingDraw(t *testing.T) {
	svc := newTestService(t, newFakeRepo(), &fakeReevaluator{}, &fakeBoard{})

	_, err := svc.Update(context.Background(), uuid.New(), DrawInput{Numbers: []int64{1, 2, 3, 4, 5}})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
