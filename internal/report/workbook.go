package report

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"ghgreport/internal/dataset"
)

// workbookSheet names one sheet of the appendix workbook
type workbookSheet struct {
	name string
	data dataset.Dataset
}

// BuildWorkbook assembles the appendix Excel workbook: one sheet per
// submitted table, in document order. Empty tables are skipped. Returns the
// serialized XLSX bytes.
func BuildWorkbook(in *Input, logger *slog.Logger) ([]byte, error) {
	sheets := []workbookSheet{
		{"전체 배출량", in.EmissionSummary},
		{"보고 대상 온실가스", in.GreenhouseGases},
		{"조직 경계", in.OrgBoundary},
		{"운영 경계", in.OperationalBoundary},
		{"사업장별 배출량", in.SiteEmissions},
		{"Scope별 배출량", in.ScopeDetail},
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("failed to close workbook", slog.String("error", err.Error()))
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	written := 0
	for _, sheet := range sheets {
		if sheet.data.Empty() || len(sheet.data.Columns) == 0 {
			continue
		}
		if err := writeSheet(f, sheet.name, sheet.data, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to write sheet %q: %w", sheet.name, err)
		}
		written++
	}

	if written == 0 {
		return nil, fmt.Errorf("no populated tables to export")
	}

	// The default sheet is only a placeholder once real sheets exist
	if err := f.DeleteSheet("Sheet1"); err != nil {
		logger.Warn("failed to remove default sheet", slog.String("error", err.Error()))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, ds dataset.Dataset, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	header := make([]interface{}, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(ds.Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, row := range ds.Rows {
		values := make([]interface{}, len(ds.Columns))
		for j, col := range ds.Columns {
			values[j] = row[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}

	return f.SetColWidth(name, "A", lastCol, 18)
}
