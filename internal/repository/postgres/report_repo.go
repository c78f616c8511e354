package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"creditlens/internal/domain"
	"creditlens/internal/port"
)

type reportRepo struct {
	db *sqlx.DB
}

// NewReportRepo creates a new PostgreSQL-backed ReportRepository.
func NewReportRepo(db *sqlx.DB) port.ReportRepository {
	return &reportRepo{db: db}
}

// reportRow mirrors a credit_reports row.
type reportRow struct {
	ID           uuid.UUID      `db:"id"`
	UploadDate   time.Time      `db:"upload_date"`
	Document     []byte         `db:"document"`
	FullName     string         `db:"full_name"`
	PAN          *string        `db:"pan"`
	CreditScore  domain.Score   `db:"credit_score"`
	ReportDate   *string        `db:"report_date"`
	AccountCount int            `db:"account_count"`
	FileName     string         `db:"file_name"`
	FileSize     int64          `db:"file_size"`
	Digest       string         `db:"digest"`
	SourceKey    sql.NullString `db:"source_key"`
}

func toRow(report *domain.Report) (*reportRow, error) {
	doc := *report
	doc.Source = nil
	body, err := json.Marshal(&doc)
	if err != nil {
		return nil, err
	}

	row := &reportRow{
		ID:           report.ID,
		UploadDate:   report.UploadDate,
		Document:     body,
		FullName:     report.BasicDetails.Name,
		PAN:          report.BasicDetails.PAN,
		CreditScore:  report.BasicDetails.CreditScore,
		ReportDate:   report.BasicDetails.ReportDate,
		AccountCount: len(report.CreditAccounts),
	}
	if src := report.Source; src != nil {
		row.FileName = src.FileName
		row.FileSize = src.FileSize
		row.Digest = src.Digest
		if src.StorageKey != "" {
			row.SourceKey = sql.NullString{String: src.StorageKey, Valid: true}
		}
	}
	return row, nil
}

func fromRow(row *reportRow) (*domain.Report, error) {
	var report domain.Report
	if err := json.Unmarshal(row.Document, &report); err != nil {
		return nil, err
	}
	report.ID = row.ID
	report.UploadDate = row.UploadDate.UTC()
	if row.FileName != "" || row.Digest != "" || row.SourceKey.Valid {
		report.Source = &domain.ReportSource{
			FileName:   row.FileName,
			FileSize:   row.FileSize,
			Digest:     row.Digest,
			StorageKey: row.SourceKey.String,
		}
	}
	return &report, nil
}

func (r *reportRepo) Create(ctx context.Context, report *domain.Report) error {
	report.ID = uuid.New()
	report.UploadDate = time.Now().UTC().Truncate(time.Microsecond)

	row, err := toRow(report)
	if err != nil {
		return fmt.Errorf("reportRepo.Create encode: %w", err)
	}

	query := `INSERT INTO credit_reports
		(id, upload_date, document, full_name, pan, credit_score, report_date,
		 account_count, file_name, file_size, digest, source_key)
		VALUES (:id, :upload_date, :document, :full_name, :pan, :credit_score, :report_date,
		 :account_count, :file_name, :file_size, :digest, :source_key)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("reportRepo.Create: %w", err)
	}
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	var row reportRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM credit_reports WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("reportRepo.GetByID: %w", err)
	}

	report, err := fromRow(&row)
	if err != nil {
		return nil, fmt.Errorf("reportRepo.GetByID decode: %w", err)
	}
	return report, nil
}

func (r *reportRepo) List(ctx context.Context, offset, limit int) ([]domain.ReportListItem, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM credit_reports"); err != nil {
		return nil, 0, fmt.Errorf("reportRepo.List count: %w", err)
	}

	items := []domain.ReportListItem{}
	err := r.db.SelectContext(ctx, &items,
		`SELECT id, upload_date, file_name, full_name, pan, credit_score, report_date, account_count
		 FROM credit_reports
		 ORDER BY upload_date DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("reportRepo.List: %w", err)
	}
	for i := range items {
		items[i].UploadDate = items[i].UploadDate.UTC()
	}
	return items, total, nil
}

func (r *reportRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
