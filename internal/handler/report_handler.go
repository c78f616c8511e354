package handler

import (
	"errors"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"creditlens/internal/domain"
	"creditlens/internal/middleware"
	"creditlens/internal/service"
)

// UploadFormField is the multipart field carrying the XML report.
const UploadFormField = "xmlFile"

// multipartOverhead is the slack allowed on top of the file limit for the
// multipart envelope itself.
const multipartOverhead = 1 << 20

// ReportHandler handles credit report upload, retrieval and export endpoints.
type ReportHandler struct {
	reportService  service.ReportService
	maxUploadBytes int64
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService, maxUploadBytes int64) *ReportHandler {
	return &ReportHandler{reportService: reportService, maxUploadBytes: maxUploadBytes}
}

// UploadResult is returned after a successful upload.
type UploadResult struct {
	ReportID uuid.UUID `json:"report_id"`
	Message  string    `json:"message"`
}

// Upload handles POST /api/v1/reports/upload
// @Summary Upload an Experian XML report
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param xmlFile formData file true "INProfileResponse XML document"
// @Success 201 {object} APIResponse{data=UploadResult}
// @Failure 400 {object} APIResponse "Missing file, not XML, or malformed XML"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 422 {object} APIResponse "Missing INProfileResponse root"
// @Failure 500 {object} APIResponse "Storage failure"
// @Router /reports/upload [post]
func (h *ReportHandler) Upload(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	file, header, err := c.Request.FormFile(UploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "No file uploaded. Use the xmlFile form field.")
		return
	}
	defer func() { _ = file.Close() }()

	report, err := h.reportService.Upload(c.Request.Context(), service.ReportUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	if subject := middleware.GetSubject(c); subject != "" {
		log.Printf("reportHandler.Upload: report %s uploaded by %s", report.ID, subject)
	}

	RespondCreated(c, UploadResult{
		ReportID: report.ID,
		Message:  "File uploaded and processed successfully.",
	})
}

// List handles GET /api/v1/reports
// @Summary List uploaded reports, newest first
// @Tags reports
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse{data=[]domain.ReportListItem,meta=PagMeta}
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	items, total, err := h.reportService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, items, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/reports/:id
// @Summary Fetch a normalized report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} APIResponse{data=domain.Report}
// @Failure 404 {object} APIResponse "Report not found"
// @Router /reports/{id} [get]
func (h *ReportHandler) GetByID(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, report)
}

// Source handles GET /api/v1/reports/:id/source
// Returns a presigned URL for the archived XML, or streams it when download=true.
// @Summary Original XML of a report
// @Tags reports
// @Produce json,xml
// @Param id path string true "Report ID"
// @Param download query bool false "Stream the file instead of returning a URL"
// @Success 200 {object} APIResponse{data=map[string]string}
// @Failure 404 {object} APIResponse "Report not found or not archived"
// @Router /reports/{id}/source [get]
func (h *ReportHandler) Source(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}

	download, _ := strconv.ParseBool(c.DefaultQuery("download", "false"))
	if download {
		data, fileName, err := h.reportService.SourceXML(c.Request.Context(), id)
		if err != nil {
			HandleError(c, err)
			return
		}
		setAttachment(c, fileName)
		c.Data(http.StatusOK, "application/xml", data)
		return
	}

	url, err := h.reportService.SourceURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Export handles GET /api/v1/reports/:id/export?format=csv|xlsx
// @Summary Export the tradelines of a report
// @Tags reports
// @Produce text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Report ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} APIResponse "Unsupported format"
// @Failure 404 {object} APIResponse "Report not found"
// @Router /reports/{id}/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	id, ok := reportID(c)
	if !ok {
		return
	}

	out, err := h.reportService.Export(c.Request.Context(), id, c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		HandleError(c, err)
		return
	}

	setAttachment(c, out.FileName)
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

// reportID parses the :id path parameter. An unparsable id cannot name a
// stored report, so it is answered as not found.
func reportID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		HandleError(c, domain.ErrReportNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func setAttachment(c *gin.Context, fileName string) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
}
