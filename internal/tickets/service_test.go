package tickets

import (
	"context"
	"testing"
	"time"

	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"github.com/bolao-platform/bolao-backend/pkg/enums"
	pkgerrors "github.com/bolao-platform/bolao-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type fakeRepository struct {
	tickets  map[uuid.UUID]*models.Ticket
	statuses map[uuid.UUID]enums.TicketStatus
}

func newFakeRepository(tickets ...*models.Ticket) *fakeRepository {
	f := &fakeRepository{
		tickets:  map[uuid.UUID]*models.Ticket{},
		statuses: map[uuid.UUID]enums.TicketStatus{},
	}
	for _, t := range tickets {
		f.tickets[t.ID] = t
	}
	return f
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (f *fakeRepository) ListByStatuses(ctx context.Context, statuses ...enums.TicketStatus) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range f.tickets {
		for _, status := range statuses {
			if t.Status == status {
				out = append(out, *t)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range f.tickets {
		if (t.BuyerID != nil && *t.BuyerID == accountID) || (t.SellerID != nil && *t.SellerID == accountID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TicketStatus) error {
	f.statuses[id] = status
	if t, ok := f.tickets[id]; ok {
		t.Status = status
	}
	return nil
}

func (f *fakeRepository) BulkUpdateStatus(ctx context.Context, from []enums.TicketStatus, to enums.TicketStatus) (int64, error) {
	var n int64
	for _, t := range f.tickets {
		for _, status := range from {
			if t.Status == status {
				t.Status = to
				n++
				break
			}
		}
	}
	return n, nil
}

type fakePool struct {
	pool map[int64]int
}

func (f *fakePool) Pool(ctx context.Context, tx *gorm.DB) (map[int64]int, error) {
	return f.pool, nil
}

func newTicket(status enums.TicketStatus, numbers []int64) *models.Ticket {
	return &models.Ticket{
		ID:        uuid.New(),
		Numbers:   pq.Int64Array(numbers),
		Status:    status,
		BuyerName: "Maria Souza",
		CreatedAt: time.Now(),
	}
}

func TestReevaluatePromotesFullyCovered(t *testing.T) {
	covered := newTicket(enums.TicketStatusActive, []int64{1, 1, 2, 3, 4, 5, 6, 7, 8, 8})
	partial := newTicket(enums.TicketStatusActive, []int64{1, 2, 3, 4, 5, 20, 21, 22, 23, 24})
	repo := newFakeRepository(covered, partial)
	pool := &fakePool{pool: map[int64]int{1: 2, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1, 8: 2}}

	svc, err := NewService(repo, pool, 10, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	summary, err := svc.Reevaluate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Reevaluate: %v", err)
	}
	if summary.Evaluated != 2 || summary.Promoted != 1 || summary.Reverted != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if repo.statuses[covered.ID] != enums.TicketStatusWinning {
		t.Fatalf("covered ticket should be winning, got %s", repo.statuses[covered.ID])
	}
	if _, changed := repo.statuses[partial.ID]; changed {
		t.Fatal("partially covered ticket should stay untouched")
	}
}

func TestReevaluateRevertsWinningOnShrunkPool(t *testing.T) {
	winning := newTicket(enums.TicketStatusWinning, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	repo := newFakeRepository(winning)
	pool := &fakePool{pool: map[int64]int{1: 1, 2: 1, 3: 1}}

	svc, _ := NewService(repo, pool, 10, nil)
	summary, err := svc.Reevaluate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Reevaluate: %v", err)
	}
	if summary.Reverted != 1 {
		t.Fatalf("expected one reverted ticket, got %+v", summary)
	}
	if repo.statuses[winning.ID] != enums.TicketStatusActive {
		t.Fatalf("winning ticket should revert to active, got %s", repo.statuses[winning.ID])
	}
}

func TestReevaluateLeavesUnpaidAndExpiredAlone(t *testing.T) {
	unpaid := newTicket(enums.TicketStatusUnpaid, []int64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	expired := newTicket(enums.TicketStatusExpired, []int64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1})
	repo := newFakeRepository(unpaid, expired)
	pool := &fakePool{pool: map[int64]int{1: 10}}

	svc, _ := NewService(repo, pool, 10, nil)
	if _, err := svc.Reevaluate(context.Background(), nil); err != nil {
		t.Fatalf("Reevaluate: %v", err)
	}
	if unpaid.Status != enums.TicketStatusUnpaid || expired.Status != enums.TicketStatusExpired {
		t.Fatalf("held/terminal statuses must survive re-evaluation: %s %s", unpaid.Status, expired.Status)
	}
}

func TestReevaluateIdempotent(t *testing.T) {
	winning := newTicket(enums.TicketStatusActive, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	repo := newFakeRepository(winning)
	pool := &fakePool{pool: map[int64]int{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1, 8: 1, 9: 1, 10: 1}}

	svc, _ := NewService(repo, pool, 10, nil)
	if _, err := svc.Reevaluate(context.Background(), nil); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	first := winning.Status

	summary, err := svc.Reevaluate(context.Background(), nil)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if winning.Status != first {
		t.Fatalf("second pass changed status from %s to %s", first, winning.Status)
	}
	if summary.Promoted != 0 || summary.Reverted != 0 {
		t.Fatalf("second pass should be a no-op, got %+v", summary)
	}
}

func TestListForAccountScoresTickets(t *testing.T) {
	accountID := uuid.New()
	ticket := newTicket(enums.TicketStatusActive, []int64{5, 5, 9, 12, 3, 1, 1, 1, 1, 1})
	ticket.BuyerID = &accountID
	repo := newFakeRepository(ticket)
	pool := &fakePool{pool: map[int64]int{5: 1, 9: 1, 12: 1, 3: 1}}

	svc, _ := NewService(repo, pool, 10, nil)
	scored, err := svc.ListForAccount(context.Background(), accountID)
	if err != nil {
		t.Fatalf("ListForAccount: %v", err)
	}
	if len(scored) != 1 {
		t.Fatalf("expected one ticket, got %d", len(scored))
	}
	if scored[0].Matches != 4 {
		t.Fatalf("expected 4 matches, got %d", scored[0].Matches)
	}
	want := []bool{true, false, true, true, true, false, false, false, false, false}
	for i := range want {
		if scored[0].Covered[i] != want[i] {
			t.Fatalf("position %d: expected %v, got %v", i, want[i], scored[0].Covered)
		}
	}
}

func TestMarkUnpaid(t *testing.T) {
	active := newTicket(enums.TicketStatusActive, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	expired := newTicket(enums.TicketStatusExpired, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	repo := newFakeRepository(active, expired)
	svc, _ := NewService(repo, &fakePool{pool: map[int64]int{}}, 10, nil)

	held, err := svc.MarkUnpaid(context.Background(), active.ID)
	if err != nil {
		t.Fatalf("MarkUnpaid: %v", err)
	}
	if held.Status != enums.TicketStatusUnpaid {
		t.Fatalf("expected unpaid, got %s", held.Status)
	}

	if _, err := svc.MarkUnpaid(context.Background(), expired.ID); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict for expired ticket, got %v", err)
	}

	if _, err := svc.MarkUnpaid(context.Background(), uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
