package report

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"ghgreport/internal/dataset"
)

// Column and label constants of the submitted tables. Lookups are exact-match
// on trimmed content; a different spelling extracts nothing.
const (
	ColCategory     = "구분"
	ColSubcategory  = "세부구분"
	ColReportYear   = "보고대상연도 배출량(tCO2eq)"
	ColBaseYear     = "기준연도 배출량(tCO2eq)"
	ColPreviousYear = "전년도 배출량(tCO2eq)"
	ColSiteSum      = "합계"

	LabelGrandTotal     = "총합"
	LabelSiteGrandTotal = "총합계"
	LabelSubtotal       = "합계"
	LabelScope1         = "Scope 1"
	LabelScope2         = "Scope 2"
	LabelScope3         = "Scope 3"

	// SentinelNA labels the largest source/site when no candidate exists
	SentinelNA = "N/A"
)

// Validation failures surfaced by Compute
var (
	ErrEmptyPrimaryTable    = errors.New("primary emissions table is empty")
	ErrGrandTotalRowMissing = errors.New("grand-total row (총합) not found in primary emissions table")
	ErrMissingColumn        = errors.New("required column missing from primary emissions table")
)

// Request is the payload of POST /generate-report: seven scalar fields and
// seven CSV-text fields. Field names follow the submitting frontend.
type Request struct {
	CompanyName             string `json:"company_name" validate:"required"`
	SelectedReportYear      string `json:"selected_report_year" validate:"required,numeric"`
	BaseYear                string `json:"base_year" validate:"required,numeric"`
	ReportSales             string `json:"report_sales"`
	ReportEmployees         string `json:"report_employees"`
	ReportSalesLastYear     string `json:"report_sales_last_year"`
	ReportEmployeesLastYear string `json:"report_employees_last_year"`

	WordTable1CSV string `json:"word_table1_csv" validate:"required"`
	WordTable2CSV string `json:"word_table2_csv"`
	WordTable3CSV string `json:"word_table3_csv"`
	WordTable4CSV string `json:"word_table4_csv"`
	WordTable5CSV string `json:"word_table5_csv"`
	WordTable6CSV string `json:"word_table6_csv"`
	WordChart1CSV string `json:"word_chart1_csv"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the request payload. The returned error names the first
// failing field.
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("field %s failed on the %s rule", verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}
	return nil
}

// Input is the immutable per-request bundle: the six document tables plus the
// chart dataset, each normalized exactly once, alongside the scalar fields.
type Input struct {
	Request

	EmissionSummary     dataset.Dataset // table 1: per-scope and grand-total emissions
	GreenhouseGases     dataset.Dataset // table 2: covered gases and GWP
	OrgBoundary         dataset.Dataset // table 3: one row per workplace
	OperationalBoundary dataset.Dataset // table 4: scope classification of sources
	SiteEmissions       dataset.Dataset // table 5: per-site emissions, sites as columns
	ScopeDetail         dataset.Dataset // table 6: per-scope detail
	Chart               dataset.Dataset // 3 scope rows x 3 year columns
}

// NewInput normalizes all CSV payloads of a request into datasets
func NewInput(req Request) *Input {
	return &Input{
		Request:             req,
		EmissionSummary:     dataset.Normalize(req.WordTable1CSV),
		GreenhouseGases:     dataset.Normalize(req.WordTable2CSV),
		OrgBoundary:         dataset.Normalize(req.WordTable3CSV),
		OperationalBoundary: dataset.Normalize(req.WordTable4CSV),
		SiteEmissions:       dataset.Normalize(req.WordTable5CSV),
		ScopeDetail:         dataset.Normalize(req.WordTable6CSV),
		Chart:               dataset.Normalize(req.WordChart1CSV),
	}
}

// Metrics is the flat bundle of computed scalars consumed by the renderer.
// Immutable once computed.
type Metrics struct {
	CompanyName    string
	WorkplaceCount int

	ReportYear   int
	BaseYear     int
	PreviousYear int

	TotalEmissionReportYear   float64
	TotalEmissionBaseYear     float64
	TotalEmissionPreviousYear float64

	ReportVsBaseYearRate     float64
	ReportVsPreviousYearRate float64

	Scope1Emission float64
	Scope1Rate     float64
	Scope2Emission float64
	Scope2Rate     float64
	Scope3Emission float64
	Scope3Rate     float64

	LargestSourceName   string
	LargestSourceAmount float64
	LargestSourceRate   float64

	LargestSiteName   string
	LargestSiteAmount float64
	LargestSiteRate   float64

	RevenueReportYear             float64
	EmployeesReportYear           int
	EmissionPerRevenueReportYear  float64
	EmissionPerEmployeeReportYear float64

	RevenuePreviousYear             float64
	EmployeesPreviousYear           int
	EmissionPerRevenuePreviousYear  float64
	EmissionPerEmployeePreviousYear float64
}
