// Package memory provides an in-process ReportRepository. Reports are held in
// their JSON form so a fetch never aliases the value that was saved.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"creditlens/internal/domain"
	"creditlens/internal/port"
)

type entry struct {
	document   []byte
	uploadDate time.Time
	source     *domain.ReportSource
	item       domain.ReportListItem
}

type reportRepo struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]*entry
}

// NewReportRepo creates an empty in-memory ReportRepository.
func NewReportRepo() port.ReportRepository {
	return &reportRepo{reports: make(map[uuid.UUID]*entry)}
}

func (r *reportRepo) Create(ctx context.Context, report *domain.Report) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory.reportRepo.Create: %w", err)
	}

	report.ID = uuid.New()
	report.UploadDate = time.Now().UTC().Truncate(time.Microsecond)

	doc := *report
	doc.Source = nil
	body, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("memory.reportRepo.Create encode: %w", err)
	}

	e := &entry{
		document:   body,
		uploadDate: report.UploadDate,
		item: domain.ReportListItem{
			ID:           report.ID,
			UploadDate:   report.UploadDate,
			FullName:     report.BasicDetails.Name,
			PAN:          copyString(report.BasicDetails.PAN),
			CreditScore:  report.BasicDetails.CreditScore,
			ReportDate:   copyString(report.BasicDetails.ReportDate),
			AccountCount: len(report.CreditAccounts),
		},
	}
	if report.Source != nil {
		src := *report.Source
		e.source = &src
		e.item.FileName = src.FileName
	}

	r.mu.Lock()
	r.reports[report.ID] = e
	r.mu.Unlock()
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	r.mu.RLock()
	e, ok := r.reports[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrReportNotFound
	}

	var report domain.Report
	if err := json.Unmarshal(e.document, &report); err != nil {
		return nil, fmt.Errorf("memory.reportRepo.GetByID decode: %w", err)
	}
	if e.source != nil {
		src := *e.source
		report.Source = &src
	}
	return &report, nil
}

func (r *reportRepo) List(ctx context.Context, offset, limit int) ([]domain.ReportListItem, int, error) {
	r.mu.RLock()
	all := make([]domain.ReportListItem, 0, len(r.reports))
	for _, e := range r.reports {
		item := e.item
		item.PAN = copyString(item.PAN)
		item.ReportDate = copyString(item.ReportDate)
		all = append(all, item)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].UploadDate.Equal(all[j].UploadDate) {
			return all[i].UploadDate.After(all[j].UploadDate)
		}
		return all[i].ID.String() > all[j].ID.String()
	})

	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.ReportListItem{}, total, nil
	}
	end := total
	if limit >= 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *reportRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
