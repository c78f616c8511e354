package port

import (
	"context"

	"github.com/google/uuid"

	"creditlens/internal/domain"
)

// ReportRepository persists normalized reports. Create assigns the report ID
// and upload date; reports are never updated afterwards.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	List(ctx context.Context, offset, limit int) ([]domain.ReportListItem, int, error)
	Ping(ctx context.Context) error
}
