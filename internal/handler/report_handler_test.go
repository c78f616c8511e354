package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"creditlens/internal/domain"
	"creditlens/internal/handler"
	"creditlens/internal/service"
	"creditlens/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func uploadRequest(t *testing.T, field, fileName string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/reports/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestReportHandler_Upload_Success(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	id := uuid.New()
	svc.On("Upload", mock.Anything, mock.AnythingOfType("service.ReportUploadInput")).
		Return(&domain.Report{ID: id}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = uploadRequest(t, handler.UploadFormField, "report.xml", []byte("<INProfileResponse/>"))

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, id.String(), data["report_id"])
	svc.AssertExpectations(t)
}

func TestReportHandler_Upload_NoFile(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = uploadRequest(t, "file", "report.xml", []byte("<x/>"))

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", errorCode(t, w))
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestReportHandler_Upload_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not xml", domain.ErrInvalidInputFormat, http.StatusBadRequest, "INVALID_FILE_FORMAT"},
		{"malformed", domain.ErrMalformedXML, http.StatusBadRequest, "MALFORMED_XML"},
		{"missing root", domain.ErrSchema, http.StatusUnprocessableEntity, "INVALID_XML_STRUCTURE"},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"store down", domain.ErrPersistence, http.StatusInternalServerError, "PERSISTENCE_FAILED"},
		{"archive failed", domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockReportService)
			h := handler.NewReportHandler(svc, 10<<20)
			svc.On("Upload", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = uploadRequest(t, handler.UploadFormField, "report.txt", []byte("hello"))

			h.Upload(c)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestReportHandler_List(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	items := []domain.ReportListItem{{ID: uuid.New()}, {ID: uuid.New()}}
	svc.On("List", mock.Anything, 5, 20).Return(items, 7, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports?offset=5&limit=500", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 7, resp.Meta.Total)
	assert.Equal(t, 5, resp.Meta.Offset)
	assert.Equal(t, 20, resp.Meta.Limit)
	assert.Len(t, resp.Data, 2)
	svc.AssertExpectations(t)
}

func TestReportHandler_GetByID(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(&domain.Report{
		ID:           id,
		BasicDetails: domain.BasicDetails{Name: "Jane Doe"},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, id.String(), data["id"])
	svc.AssertExpectations(t)
}

func TestReportHandler_GetByID_NotFound(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrReportNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REPORT_NOT_FOUND", errorCode(t, w))
}

func TestReportHandler_GetByID_BadID(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/not-a-uuid", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestReportHandler_Source_URL(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	id := uuid.New()
	svc.On("SourceURL", mock.Anything, id).Return("https://s3.example.com/signed", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String()+"/source", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Source(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, "https://s3.example.com/signed", data["url"])
}

func TestReportHandler_Source_Download(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	id := uuid.New()
	svc.On("SourceXML", mock.Anything, id).Return([]byte("<INProfileResponse/>"), "jane.xml", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String()+"/source?download=true", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Source(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=jane.xml", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "<INProfileResponse/>", w.Body.String())
	svc.AssertNotCalled(t, "SourceURL", mock.Anything, mock.Anything)
}

func TestReportHandler_Source_NotArchived(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	id := uuid.New()
	svc.On("SourceURL", mock.Anything, id).Return("", domain.ErrSourceUnavailable)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String()+"/source", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Source(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SOURCE_UNAVAILABLE", errorCode(t, w))
}

func TestReportHandler_Export(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	id := uuid.New()
	svc.On("Export", mock.Anything, id, "xlsx").Return(&service.ExportFile{
		Data:        []byte("PK..."),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		FileName:    "Jane_Doe_20240115.xlsx",
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String()+"/export?format=xlsx", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=Jane_Doe_20240115.xlsx", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK...", w.Body.String())
	svc.AssertExpectations(t)
}

func TestReportHandler_Export_DefaultsToCSV(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	id := uuid.New()
	svc.On("Export", mock.Anything, id, "csv").Return(&service.ExportFile{
		Data:        []byte("a,b\n"),
		ContentType: "text/csv; charset=utf-8",
		FileName:    "credit_report.csv",
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String()+"/export", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	svc.AssertExpectations(t)
}

func TestReportHandler_Export_UnsupportedFormat(t *testing.T) {
	svc := new(mocks.MockReportService)
	h := handler.NewReportHandler(svc, 10<<20)

	id := uuid.New()
	svc.On("Export", mock.Anything, id, "pdf").Return(nil, domain.ErrUnsupportedExportFormat)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/reports/"+id.String()+"/export?format=pdf", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_EXPORT_FORMAT", errorCode(t, w))
}
