package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/bolao-platform/bolao-backend/internal/multiset"
	"github.com/bolao-platform/bolao-backend/pkg/db/models"
	"github.com/bolao-platform/bolao-backend/pkg/enums"
	pkgerrors "github.com/bolao-platform/bolao-backend/pkg/errors"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
	"github.com/bolao-platform/bolao-backend/pkg/metrics"
	"github.com/bolao-platform/bolao-backend/pkg/redis"
	"gorm.io/gorm"
)

const anonymousInitials = "?"

// ticketIDPrefixLen keeps the public board uncorrelatable with internal ids.
const ticketIDPrefixLen = 4

// TicketSource lists tickets by status for scoring.
type TicketSource interface {
	ListByStatuses(ctx context.Context, statuses ...enums.TicketStatus) ([]models.Ticket, error)
}

// PoolSource loads the cumulative draw-pool frequency map.
type PoolSource interface {
	Pool(ctx context.Context, tx *gorm.DB) (map[int64]int, error)
}

// SnapshotStore persists the public board as one overwritten document.
type SnapshotStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	RankingBoardKey() string
}

// BoardEntry is one anonymized row of the public board.
type BoardEntry struct {
	Initials string `json:"initials"`
	Matches  int    `json:"matches"`
	TicketID string `json:"ticket_id"`
}

// Board is the public snapshot. Ranking is never null in the serialized form,
// an empty cycle publishes {"ranking": []}.
type Board struct {
	Ranking     []BoardEntry `json:"ranking"`
	LastUpdated time.Time    `json:"last_updated"`
}

// AdminEntry is one row of the unbounded administrative cycle ranking.
type AdminEntry struct {
	TicketID       string             `json:"ticket_id"`
	BuyerName      string             `json:"buyer_name"`
	SellerUsername *string            `json:"seller_username,omitempty"`
	Numbers        []int64            `json:"numbers"`
	Matches        int                `json:"matches"`
	Status         enums.TicketStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Service builds, publishes, and serves ranking views.
type Service interface {
	Publish(ctx context.Context) error
	Board(ctx context.Context) (*Board, error)
	CycleRanking(ctx context.Context) ([]AdminEntry, error)
}

type service struct {
	tickets   TicketSource
	pool      PoolSource
	snapshots SnapshotStore
	boardSize int
	metrics   *metrics.EngineMetrics
	logg      *logger.Logger
}

// NewService wires the ranking service.
func NewService(tickets TicketSource, pool PoolSource, snapshots SnapshotStore, boardSize int, engineMetrics *metrics.EngineMetrics, logg *logger.Logger) (Service, error) {
	if tickets == nil {
		return nil, fmt.Errorf("ticket source required")
	}
	if pool == nil {
		return nil, fmt.Errorf("pool source required")
	}
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if boardSize <= 0 {
		return nil, fmt.Errorf("board size must be positive")
	}
	return &service{
		tickets:   tickets,
		pool:      pool,
		snapshots: snapshots,
		boardSize: boardSize,
		metrics:   engineMetrics,
		logg:      logg,
	}, nil
}

// Publish rebuilds the public board from scratch and replaces the stored
// snapshot whole. Called after every committed draw mutation and after a
// cycle reset.
func (s *service) Publish(ctx context.Context) error {
	start := time.Now()

	board, err := s.build(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("marshaling ranking board: %w", err)
	}
	if err := s.snapshots.Set(ctx, s.snapshots.RankingBoardKey(), payload, 0); err != nil {
		return fmt.Errorf("storing ranking board: %w", err)
	}

	s.metrics.ObserveRankingRebuild(time.Since(start))
	if s.logg != nil {
		s.logg.Info(ctx, fmt.Sprintf("ranking board published with %d entries", len(board.Ranking)))
	}
	return nil
}

// Board serves the public snapshot. A missing snapshot (fresh deploy, flushed
// cache) triggers a rebuild-and-publish instead of an error.
func (s *service) Board(ctx context.Context) (*Board, error) {
	raw, err := s.snapshots.Get(ctx, s.snapshots.RankingBoardKey())
	if err != nil {
		if errors.Is(err, redis.Nil) {
			if err := s.Publish(ctx); err != nil {
				return nil, err
			}
			return s.build(ctx)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading ranking board")
	}

	var board Board
	if err := json.Unmarshal([]byte(raw), &board); err != nil {
		return nil, fmt.Errorf("decoding ranking board: %w", err)
	}
	if board.Ranking == nil {
		board.Ranking = []BoardEntry{}
	}
	return &board, nil
}

// CycleRanking returns the full scored ticket list for the current cycle,
// zero-match tickets included, with complete identity and attribution.
func (s *service) CycleRanking(ctx context.Context) ([]AdminEntry, error) {
	scored, err := s.scoredEligible(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]AdminEntry, len(scored))
	for i, st := range scored {
		entries[i] = AdminEntry{
			TicketID:       st.ticket.ID.String(),
			BuyerName:      st.ticket.BuyerName,
			SellerUsername: st.ticket.SellerUsername,
			Numbers:        st.ticket.Numbers,
			Matches:        st.matches,
			Status:         st.ticket.Status,
			CreatedAt:      st.ticket.CreatedAt,
		}
	}
	return entries, nil
}

type scoredTicket struct {
	ticket  models.Ticket
	matches int
}

// scoredEligible scores every active and winning ticket against the current
// pool and sorts by match count descending, creation time ascending.
func (s *service) scoredEligible(ctx context.Context) ([]scoredTicket, error) {
	pool, err := s.pool.Pool(ctx, nil)
	if err != nil {
		return nil, err
	}

	eligible, err := s.tickets.ListByStatuses(ctx, enums.TicketStatusActive, enums.TicketStatusWinning)
	if err != nil {
		return nil, err
	}

	scored := make([]scoredTicket, len(eligible))
	for i, ticket := range eligible {
		scored[i] = scoredTicket{ticket: ticket, matches: multiset.Matches(ticket.Numbers, pool)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].matches != scored[j].matches {
			return scored[i].matches > scored[j].matches
		}
		return scored[i].ticket.CreatedAt.Before(scored[j].ticket.CreatedAt)
	})
	return scored, nil
}

func (s *service) build(ctx context.Context) (*Board, error) {
	scored, err := s.scoredEligible(ctx)
	if err != nil {
		return nil, err
	}

	entries := []BoardEntry{}
	for _, st := range scored {
		if st.matches == 0 {
			continue
		}
		entries = append(entries, BoardEntry{
			Initials: Initials(st.ticket.BuyerName),
			Matches:  st.matches,
			TicketID: truncateID(st.ticket.ID.String()),
		})
		if len(entries) == s.boardSize {
			break
		}
	}

	return &Board{Ranking: entries, LastUpdated: time.Now().UTC()}, nil
}

// Initials reduces a full name to "first letter of first name + first letter
// of last name", uppercase. Names with one word yield one letter; empty or
// blank names yield "?".
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return anonymousInitials
	}
	first := firstLetter(words[0])
	if len(words) == 1 {
		return first
	}
	return first + firstLetter(words[len(words)-1])
}

func firstLetter(word string) string {
	for _, r := range word {
		return string(unicode.ToUpper(r))
	}
	return anonymousInitials
}

func truncateID(id string) string {
	if len(id) <= ticketIDPrefixLen {
		return id
	}
	return id[:ticketIDPrefixLen]
}
