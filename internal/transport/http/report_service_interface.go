package http

import (
	"context"

	"ghgreport/internal/report"
	"ghgreport/internal/services"
)

// ReportServiceInterface defines the generation operations the handler needs.
// Satisfied by services.ReportService; tests substitute a mock.
type ReportServiceInterface interface {
	GenerateReport(ctx context.Context, req report.Request) (*services.GeneratedFile, error)
	GenerateWorkbook(ctx context.Context, req report.Request) ([]byte, string, error)
}
