package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/render"

	apierrors "ghgreport/internal/errors"
	"ghgreport/internal/report"
)

const (
	contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportHandler handles report generation HTTP requests
type ReportHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// GenerateReport handles POST /generate-report. The response body is the
// assembled DOCX file, served as an attachment.
func (h *ReportHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	file, err := h.service.GenerateReport(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Cleanup()

	h.serveFile(w, r, file.Path, file.Filename, contentTypeDocx)
}

// GenerateWorkbook handles POST /generate-workbook. The response body is an
// XLSX workbook with one sheet per submitted table.
func (h *ReportHandler) GenerateWorkbook(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	data, filename, err := h.service.GenerateWorkbook(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeXlsx)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write workbook response",
			slog.String("error", err.Error()))
	}
}

// decodeRequest decodes and validates the generation payload. On failure the
// error response has already been written and ok is false.
func (h *ReportHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (report.Request, bool) {
	var req report.Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return req, false
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error()))
		return req, false
	}

	return req, true
}

// serveFile streams a generated artifact as a download
func (h *ReportHandler) serveFile(w http.ResponseWriter, r *http.Request, path, filename, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("opening generated file", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("reading generated file", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))

	if _, err := io.Copy(w, f); err != nil {
		// Headers are already out, nothing to do but log
		h.logger.WarnContext(r.Context(), "failed to stream generated file",
			slog.String("file", filename),
			slog.String("error", err.Error()))
	}
}
