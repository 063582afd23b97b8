package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mfgops/backend/internal/domain/inventory"
	"github.com/mfgops/backend/internal/domain/shared"
)

// ReportService derives read-only reports from the movement ledger and
// the pool rows
type ReportService struct {
	itemRepo     inventory.ItemRepository
	movementRepo inventory.MovementRepository
}

// NewReportService creates a new ReportService
func NewReportService(itemRepo inventory.ItemRepository, movementRepo inventory.MovementRepository) *ReportService {
	return &ReportService{
		itemRepo:     itemRepo,
		movementRepo: movementRepo,
	}
}

// MostActiveItems ranks items by ledger movement count over a period
func (s *ReportService) MostActiveItems(ctx context.Context, from, to time.Time, limit int) ([]ItemActivityResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	if to.IsZero() {
		to = time.Now()
	}
	if from.After(to) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Report period start is after its end")
	}

	activities, err := s.movementRepo.FindMostActive(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]ItemActivityResponse, 0, len(activities))
	for _, a := range activities {
		responses = append(responses, ItemActivityResponse{
			ItemID:        a.ItemID,
			ItemType:      a.ItemType.String(),
			ItemCode:      a.ItemCode,
			MovementCount: a.MovementCount,
			TotalIn:       a.TotalIn,
			TotalOut:      a.TotalOut,
			NetQuantity:   a.NetQuantity(),
		})
	}
	return responses, nil
}

// ItemMovements lists one item's ledger history, newest first
func (s *ReportService) ItemMovements(ctx context.Context, itemID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		domainFilter.Filters["to"] = *filter.To
	}

	movements, err := s.movementRepo.FindByItem(ctx, itemID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.movementRepo.CountByItem(ctx, itemID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, *ToMovementResponse(&movements[i]))
	}
	return responses, total, nil
}

// MovementSummary aggregates total in and out volume over a period
func (s *ReportService) MovementSummary(ctx context.Context, from, to time.Time) (*MovementSummaryResponse, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.After(to) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Report period start is after its end")
	}

	in, out, err := s.movementRepo.SumByDirection(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &MovementSummaryResponse{
		From:     from,
		To:       to,
		TotalIn:  in,
		TotalOut: out,
		Net:      in.Sub(out),
	}, nil
}

// BelowMinimum lists items whose on-hand quantity dropped under their
// configured threshold
func (s *ReportService) BelowMinimum(ctx context.Context) ([]ItemResponse, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 200

	items, err := s.itemRepo.FindBelowMinimum(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *ToItemResponse(&items[i]))
	}
	return responses, nil
}
