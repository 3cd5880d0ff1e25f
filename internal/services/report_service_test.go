package services

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghgreport/internal/config"
	apierrors "ghgreport/internal/errors"
	"ghgreport/internal/report"
)

const primaryHeader = "구분,세부구분,보고대상연도 배출량(tCO2eq),기준연도 배출량(tCO2eq),전년도 배출량(tCO2eq)"

func testRequest() report.Request {
	primary := primaryHeader + `
Scope 1,고정연소,400,350,380
Scope 1,이동연소,200,150,170
Scope 1,합계,600,500,550
Scope 2,전력,300,250,280
Scope 2,합계,300,250,280
Scope 3,출장,100,50,70
Scope 3,합계,100,50,70
총합,,1000,800,900`

	return report.Request{
		CompanyName:        "주식회사 테스트",
		SelectedReportYear: "2024",
		BaseYear:           "2021",
		ReportSales:        "50000",
		ReportEmployees:    "250",
		WordTable1CSV:      primary,
		WordTable3CSV:      "사업장,소재지\n서울사업장,서울\n부산사업장,부산",
		WordTable5CSV:      "구분,세부구분,서울사업장,부산사업장,합계\n총합계,,400,600,1000",
		WordChart1CSV:      "Scope,기준연도,전년도,보고대상연도\nScope 1,500,550,600\nScope 2,250,280,300\nScope 3,50,70,100",
	}
}

func newTestService(t *testing.T) *ReportService {
	t.Helper()
	return NewReportService(config.AssetsConfig{TempDir: t.TempDir()}, nil)
}

func TestReportService_GenerateReport(t *testing.T) {
	svc := newTestService(t)

	file, err := svc.GenerateReport(context.Background(), testRequest())
	require.NoError(t, err)
	defer file.Cleanup()

	assert.Equal(t, "2024_emission_report.docx", file.Filename)
	assert.FileExists(t, file.Path)

	info, err := os.Stat(file.Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestReportService_Cleanup(t *testing.T) {
	svc := newTestService(t)

	file, err := svc.GenerateReport(context.Background(), testRequest())
	require.NoError(t, err)
	require.FileExists(t, file.Path)

	file.Cleanup()
	assert.NoFileExists(t, file.Path)
}

func TestReportService_GenerateReport_InvalidInput(t *testing.T) {
	svc := newTestService(t)

	req := testRequest()
	req.WordTable1CSV = primaryHeader + "\nScope 1,고정연소,400,350,380"

	_, err := svc.GenerateReport(context.Background(), req)
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "REPORT_VALIDATION_FAILED", apiErr.ErrorCode)
}

func TestReportService_GenerateReport_ChartFailureTolerated(t *testing.T) {
	svc := newTestService(t)

	req := testRequest()
	req.WordChart1CSV = ""

	file, err := svc.GenerateReport(context.Background(), req)
	require.NoError(t, err)
	defer file.Cleanup()

	assert.FileExists(t, file.Path)
}

func TestReportService_GenerateReport_NoWorkDirLeak(t *testing.T) {
	tempDir := t.TempDir()
	svc := NewReportService(config.AssetsConfig{TempDir: tempDir}, nil)

	req := testRequest()
	req.WordTable1CSV = ""
	_, err := svc.GenerateReport(context.Background(), req)
	require.Error(t, err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReportService_GenerateWorkbook(t *testing.T) {
	svc := newTestService(t)

	data, filename, err := svc.GenerateWorkbook(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "2024_emission_tables.xlsx", filename)
	assert.NotEmpty(t, data)
}

func TestReportService_GenerateWorkbook_AllEmpty(t *testing.T) {
	svc := newTestService(t)

	req := report.Request{
		CompanyName:        "테스트",
		SelectedReportYear: "2024",
		BaseYear:           "2021",
	}
	_, _, err := svc.GenerateWorkbook(context.Background(), req)
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
}

func TestReportService_FilenameFollowsYear(t *testing.T) {
	svc := newTestService(t)

	for _, year := range []string{"2022", "2025"} {
		t.Run(year, func(t *testing.T) {
			req := testRequest()
			req.SelectedReportYear = year

			file, err := svc.GenerateReport(context.Background(), req)
			require.NoError(t, err)
			defer file.Cleanup()

			assert.Equal(t, fmt.Sprintf("%s_emission_report.docx", year), file.Filename)
		})
	}
}
