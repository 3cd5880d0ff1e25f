package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ghgreport/internal/config"
	apierrors "ghgreport/internal/errors"
	"ghgreport/internal/infrastructure"
	"ghgreport/internal/report"
)

// ReportService orchestrates the full generation flow: normalize the
// submitted tables, compute the metrics, render the chart image and assemble
// the document, all inside a per-request work directory.
type ReportService struct {
	assets config.AssetsConfig
	charts *report.ChartRenderer
	docs   *report.DocumentBuilder
	logger *slog.Logger
}

// GeneratedFile is a produced artifact on disk. The caller owns streaming it
// out and must call Cleanup afterwards to drop the work directory.
type GeneratedFile struct {
	Path     string
	Filename string
	workDir  string
	logger   *slog.Logger
}

// Cleanup removes the work directory that holds the artifact
func (g *GeneratedFile) Cleanup() {
	if g.workDir == "" {
		return
	}
	if err := os.RemoveAll(g.workDir); err != nil {
		g.logger.Warn("failed to remove work directory",
			slog.String("dir", g.workDir),
			slog.String("error", err.Error()))
	}
}

// NewReportService creates a report service with injected dependencies
func NewReportService(assets config.AssetsConfig, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "report_service")
	return &ReportService{
		assets: assets,
		charts: report.NewChartRenderer(assets.FontPaths, logger),
		docs:   report.NewDocumentBuilder(assets.LogoPath, logger),
		logger: logger,
	}
}

// requestLogger attaches the request trace ID to the service logger
func (s *ReportService) requestLogger(ctx context.Context) *slog.Logger {
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		return s.logger.With(slog.String("trace_id", traceID))
	}
	return s.logger
}

// GenerateReport produces the DOCX report for a request. Validation and
// metric failures come back as 4xx APIErrors; everything else is a 500.
func (s *ReportService) GenerateReport(ctx context.Context, req report.Request) (*GeneratedFile, error) {
	logger := s.requestLogger(ctx)

	in := report.NewInput(req)

	m, err := report.Compute(in)
	if err != nil {
		logger.Warn("metric computation rejected input", slog.String("error", err.Error()))
		return nil, apierrors.ReportValidationError(err)
	}

	workDir, err := os.MkdirTemp(s.assets.TempDir, "ghgreport-*")
	if err != nil {
		return nil, apierrors.FileSystemError("creating work directory", err)
	}

	file, err := s.renderDocument(workDir, m, in, logger)
	if err != nil {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logger.Warn("failed to remove work directory",
				slog.String("dir", workDir),
				slog.String("error", rmErr.Error()))
		}
		return nil, err
	}

	logger.Info("report generated",
		slog.String("company", m.CompanyName),
		slog.Int("report_year", m.ReportYear),
		slog.String("file", file.Filename))
	return file, nil
}

func (s *ReportService) renderDocument(workDir string, m *report.Metrics, in *report.Input, logger *slog.Logger) (*GeneratedFile, error) {
	// A failed chart degrades the document to text and tables only
	chartPath := filepath.Join(workDir, "chart.png")
	if err := s.charts.Render(in.Chart, chartPath); err != nil {
		logger.Warn("chart rendering skipped", slog.String("error", err.Error()))
		chartPath = ""
	}

	doc, err := s.docs.Build(m, in, chartPath)
	if err != nil {
		return nil, apierrors.ReportGenerationError(err)
	}

	filename := fmt.Sprintf("%d_emission_report.docx", m.ReportYear)
	outPath := filepath.Join(workDir, filename)

	f, err := os.Create(outPath)
	if err != nil {
		return nil, apierrors.FileSystemError("creating report file", err)
	}
	defer f.Close()

	if _, err := doc.WriteTo(f); err != nil {
		return nil, apierrors.ReportGenerationError(fmt.Errorf("failed to serialize document: %w", err))
	}

	return &GeneratedFile{
		Path:     outPath,
		Filename: filename,
		workDir:  workDir,
		logger:   logger,
	}, nil
}

// GenerateWorkbook produces the appendix XLSX with one sheet per submitted
// table. Unlike the report it needs no metrics, only non-empty tables.
func (s *ReportService) GenerateWorkbook(ctx context.Context, req report.Request) ([]byte, string, error) {
	logger := s.requestLogger(ctx)

	in := report.NewInput(req)

	data, err := report.BuildWorkbook(in, logger)
	if err != nil {
		logger.Warn("workbook generation rejected input", slog.String("error", err.Error()))
		return nil, "", apierrors.ReportValidationError(err)
	}

	filename := fmt.Sprintf("%s_emission_tables.xlsx", req.SelectedReportYear)
	logger.Info("workbook generated",
		slog.String("company", req.CompanyName),
		slog.String("file", filename))
	return data, filename, nil
}
