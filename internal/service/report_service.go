package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"creditlens/internal/config"
	"creditlens/internal/csvexport"
	"creditlens/internal/domain"
	"creditlens/internal/extract"
	"creditlens/internal/port"
	"creditlens/internal/xlsxexport"
	"creditlens/internal/xmltree"
)

// Export formats.
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

const (
	contentTypeXML  = "application/xml"
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportUploadInput is the DTO for report upload requests.
type ReportUploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Data        []byte
	ContentType string
	FileName    string
}

// ReportService ingests INProfileResponse uploads and serves stored reports.
type ReportService interface {
	Upload(ctx context.Context, input ReportUploadInput) (*domain.Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	List(ctx context.Context, offset, limit int) ([]domain.ReportListItem, int, error)
	SourceURL(ctx context.Context, id uuid.UUID) (string, error)
	SourceXML(ctx context.Context, id uuid.UUID) ([]byte, string, error)
	Export(ctx context.Context, id uuid.UUID, format string) (*ExportFile, error)
}

type reportService struct {
	reportRepo port.ReportRepository
	storage    port.ObjectStorage
	uploadCfg  *config.UploadConfig
	s3Cfg      *config.S3Config
}

// NewReportService creates a new ReportService implementation. A nil storage
// disables archiving of the uploaded XML.
func NewReportService(
	reportRepo port.ReportRepository,
	storage port.ObjectStorage,
	uploadCfg *config.UploadConfig,
	s3Cfg *config.S3Config,
) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		storage:    storage,
		uploadCfg:  uploadCfg,
		s3Cfg:      s3Cfg,
	}
}

// IsXMLUpload reports whether a file is acceptable as a report upload, judged by
// its name or declared media type only.
func IsXMLUpload(header *multipart.FileHeader) bool {
	if header == nil {
		return false
	}
	if strings.EqualFold(path.Ext(header.Filename), ".xml") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "text/xml" || mediaType == "application/xml"
}

func (s *reportService) Upload(ctx context.Context, input ReportUploadInput) (*domain.Report, error) {
	if input.File == nil || !IsXMLUpload(input.Header) {
		return nil, domain.ErrInvalidInputFormat
	}

	maxBytes := s.uploadCfg.MaxBytes()
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	sum := blake2b.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	tree, err := xmltree.ParseBytes(data)
	if err != nil {
		log.Printf("reportService.Upload: %s is not well-formed XML: %v", input.Header.Filename, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedXML, err)
	}

	report, err := extract.Extract(tree)
	if err != nil {
		log.Printf("reportService.Upload: %s rejected: %v", input.Header.Filename, err)
		return nil, err
	}

	report.Source = &domain.ReportSource{
		FileName: input.Header.Filename,
		FileSize: int64(len(data)),
		Digest:   digest,
	}

	if s.storage != nil {
		key := archiveKey(time.Now().UTC(), input.Header.Filename)
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.s3Cfg.Bucket,
			Key:         key,
			Body:        bytes.NewReader(data),
			ContentType: contentTypeXML,
			Size:        int64(len(data)),
			Metadata: map[string]string{
				port.MetadataDigest:       digest,
				port.MetadataOriginalName: csvexport.SanitizeFilename(input.Header.Filename),
			},
		})
		if err != nil {
			log.Printf("reportService.Upload: archiving %s failed: %v", input.Header.Filename, err)
			return nil, domain.ErrUploadFailed
		}
		report.Source.StorageKey = key
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		log.Printf("reportService.Upload: failed to save report from %s: %v", input.Header.Filename, err)
		if key := report.Source.StorageKey; key != "" {
			if delErr := s.storage.Delete(ctx, s.s3Cfg.Bucket, key); delErr != nil {
				log.Printf("reportService.Upload: failed to remove archived %s: %v", key, delErr)
			}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	log.Printf("reportService.Upload: stored report %s from %s (%d bytes, %d accounts)",
		report.ID, input.Header.Filename, len(data), len(report.CreditAccounts))
	return report, nil
}

// archiveKey builds a unique object key for an uploaded file.
func archiveKey(now time.Time, fileName string) string {
	name := csvexport.SanitizeFilename(strings.TrimSuffix(fileName, path.Ext(fileName)))
	if name == "" {
		name = "report"
	}
	return fmt.Sprintf("reports/%s/%s/%s.xml", now.Format("2006/01/02"), uuid.New(), name)
}

func (s *reportService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error) {
	return s.reportRepo.GetByID(ctx, id)
}

func (s *reportService) List(ctx context.Context, offset, limit int) ([]domain.ReportListItem, int, error) {
	return s.reportRepo.List(ctx, offset, limit)
}

func (s *reportService) archivedKey(ctx context.Context, id uuid.UUID) (*domain.Report, string, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if s.storage == nil || report.Source == nil || report.Source.StorageKey == "" {
		return nil, "", domain.ErrSourceUnavailable
	}
	return report, report.Source.StorageKey, nil
}

func (s *reportService) SourceURL(ctx context.Context, id uuid.UUID) (string, error) {
	_, key, err := s.archivedKey(ctx, id)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, s.s3Cfg.Bucket, key, s.s3Cfg.PresignExpiry)
}

func (s *reportService) SourceXML(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	report, key, err := s.archivedKey(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := s.storage.Download(ctx, s.s3Cfg.Bucket, key)
	if err != nil {
		return nil, "", err
	}
	return data, report.Source.FileName, nil
}

func (s *reportService) Export(ctx context.Context, id uuid.UUID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ExportFormatCSV && format != ExportFormatXLSX {
		return nil, domain.ErrUnsupportedExportFormat
	}

	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var reportDate string
	if report.BasicDetails.ReportDate != nil {
		reportDate = *report.BasicDetails.ReportDate
	}
	fileName := csvexport.BuildFilename(report.BasicDetails.Name, reportDate, format)

	switch format {
	case ExportFormatXLSX:
		data, err := xlsxexport.Build(report)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Data: data, ContentType: contentTypeXLSX, FileName: fileName}, nil
	default:
		var buf bytes.Buffer
		buf.Write(csvexport.BOM)
		w := csvexport.NewWriter(&buf)
		if err := w.WriteHeader(); err != nil {
			return nil, fmt.Errorf("writing csv header: %w", err)
		}
		if err := w.WriteAccounts(report.CreditAccounts); err != nil {
			return nil, fmt.Errorf("writing csv rows: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("flushing csv: %w", err)
		}
		return &ExportFile{Data: buf.Bytes(), ContentType: contentTypeCSV, FileName: fileName}, nil
	}
}
