package service

import (
	"context"
	"fmt"

	"github.com/petclinic/records/internal/domain"
	"github.com/petclinic/records/internal/repo"
)

// exportBatchSize is how many holders Export reads per repository call.
const exportBatchSize = 100

// ExportService assembles a flat roster of every holder and their pets.
type ExportService struct {
	repo repo.HolderRepo
}

// NewExportService constructs an ExportService backed by r.
func NewExportService(r repo.HolderRepo) *ExportService {
	return &ExportService{repo: r}
}

// Export returns one RosterRow per pet across all holders, in holder ID order.
// Holders with no pets contribute one row with empty pet fields.
func (s *ExportService) Export(ctx context.Context) ([]domain.RosterRow, error) {
	rows := []domain.RosterRow{}
	for page := 1; ; page++ {
		holders, total, err := s.repo.FindAll(ctx, domain.NewPaginationParams(&page, exportBatchSize))
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		for _, h := range holders {
			rows = append(rows, domain.RosterRows(h)...)
		}
		if len(holders) == 0 || int64(page*exportBatchSize) >= total {
			return rows, nil
		}
	}
}
