package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToNumber coerces a cell value to a float64. Thousands separators and quote
// characters are stripped and surrounding whitespace trimmed; the empty string
// and the literal "0.000" collapse to zero; anything still non-numeric yields
// zero. Total: never fails.
func ToNumber(value string) float64 {
	cleaned := strings.NewReplacer(",", "", `"`, "", "'", "").Replace(value)
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" || cleaned == "0.000" {
		return 0
	}

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// Percentage returns round(a/b*100, 2), or 0 when the denominator is zero
func Percentage(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return round(a/b*100, 2)
}

// SafeDivide returns a/b rounded to the given number of decimals, or 0 when
// the denominator is zero
func SafeDivide(a, b float64, decimals int) float64 {
	if b == 0 {
		return 0
	}
	return round(a/b, decimals)
}

func round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// requiredPrimaryColumns are the columns Compute extracts from the primary
// emissions table
var requiredPrimaryColumns = []string{
	ColCategory, ColSubcategory, ColReportYear, ColBaseYear, ColPreviousYear,
}

// Compute derives the metrics bundle from the report input. It fails when the
// primary emissions table is empty, lacks a required column, or has no
// grand-total row; every other irregularity degrades to zeros or the N/A
// sentinel.
func Compute(in *Input) (*Metrics, error) {
	reportYear, err := strconv.Atoi(strings.TrimSpace(in.SelectedReportYear))
	if err != nil {
		return nil, fmt.Errorf("invalid report year %q: %w", in.SelectedReportYear, err)
	}
	baseYear, err := strconv.Atoi(strings.TrimSpace(in.BaseYear))
	if err != nil {
		return nil, fmt.Errorf("invalid base year %q: %w", in.BaseYear, err)
	}

	m := &Metrics{
		CompanyName:    in.CompanyName,
		WorkplaceCount: len(in.OrgBoundary.Rows),
		ReportYear:     reportYear,
		BaseYear:       baseYear,
		PreviousYear:   reportYear - 1,
	}

	primary := in.EmissionSummary
	if primary.Empty() || len(primary.Rows) == 0 {
		return nil, ErrEmptyPrimaryTable
	}
	if err := checkPrimaryColumns(primary.Columns); err != nil {
		return nil, err
	}

	totalRow, ok := primary.Find(map[string]string{ColCategory: LabelGrandTotal})
	if !ok {
		return nil, ErrGrandTotalRowMissing
	}

	m.TotalEmissionReportYear = ToNumber(totalRow[ColReportYear])
	m.TotalEmissionBaseYear = ToNumber(totalRow[ColBaseYear])
	m.TotalEmissionPreviousYear = ToNumber(totalRow[ColPreviousYear])

	m.ReportVsBaseYearRate = Percentage(m.TotalEmissionReportYear, m.TotalEmissionBaseYear)
	m.ReportVsPreviousYearRate = Percentage(m.TotalEmissionReportYear, m.TotalEmissionPreviousYear)

	m.Scope1Emission = scopeSubtotal(in, LabelScope1)
	m.Scope2Emission = scopeSubtotal(in, LabelScope2)
	m.Scope3Emission = scopeSubtotal(in, LabelScope3)
	m.Scope1Rate = Percentage(m.Scope1Emission, m.TotalEmissionReportYear)
	m.Scope2Rate = Percentage(m.Scope2Emission, m.TotalEmissionReportYear)
	m.Scope3Rate = Percentage(m.Scope3Emission, m.TotalEmissionReportYear)

	m.LargestSourceName, m.LargestSourceAmount = largestSource(in)
	m.LargestSourceRate = Percentage(m.LargestSourceAmount, m.TotalEmissionReportYear)

	m.LargestSiteName, m.LargestSiteAmount = largestSite(in)
	m.LargestSiteRate = Percentage(m.LargestSiteAmount, m.TotalEmissionReportYear)

	m.RevenueReportYear = ToNumber(in.ReportSales)
	m.EmployeesReportYear = int(ToNumber(in.ReportEmployees))
	m.RevenuePreviousYear = ToNumber(in.ReportSalesLastYear)
	m.EmployeesPreviousYear = int(ToNumber(in.ReportEmployeesLastYear))

	m.EmissionPerRevenueReportYear = SafeDivide(m.TotalEmissionReportYear, m.RevenueReportYear, 4)
	m.EmissionPerEmployeeReportYear = SafeDivide(m.TotalEmissionReportYear, float64(m.EmployeesReportYear), 2)
	m.EmissionPerRevenuePreviousYear = SafeDivide(m.TotalEmissionPreviousYear, m.RevenuePreviousYear, 4)
	m.EmissionPerEmployeePreviousYear = SafeDivide(m.TotalEmissionPreviousYear, float64(m.EmployeesPreviousYear), 2)

	return m, nil
}

// checkPrimaryColumns validates the typed schema of the primary table up
// front, so a renamed column surfaces in the error instead of extracting zeros
func checkPrimaryColumns(columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}
	for _, want := range requiredPrimaryColumns {
		if !present[want] {
			return fmt.Errorf("%w: %s", ErrMissingColumn, want)
		}
	}
	return nil
}

// scopeSubtotal returns the report-year emission of the scope's subtotal row,
// or zero when the row is absent
func scopeSubtotal(in *Input, scope string) float64 {
	row, ok := in.EmissionSummary.Find(map[string]string{
		ColCategory:    scope,
		ColSubcategory: LabelSubtotal,
	})
	if !ok {
		return 0
	}
	return ToNumber(row[ColReportYear])
}

// largestSource scans the operational-scope rows (Scope 1 and 2, subtotal
// rows excluded) for the maximum report-year emission. Ties keep the first
// row in table order. Returns the N/A sentinel when no candidate rows exist.
func largestSource(in *Input) (string, float64) {
	name := SentinelNA
	amount := 0.0
	found := false

	for _, row := range in.EmissionSummary.Rows {
		category := strings.TrimSpace(row[ColCategory])
		if category != LabelScope1 && category != LabelScope2 {
			continue
		}
		if strings.TrimSpace(row[ColSubcategory]) == LabelSubtotal {
			continue
		}

		value := ToNumber(row[ColReportYear])
		if !found || value > amount {
			name = row[ColSubcategory]
			amount = value
			found = true
		}
	}

	if !found {
		return SentinelNA, 0
	}
	return name, amount
}

// largestSite reads the grand-total row of the per-site table and treats
// every column except category/subcategory/sum as a site. Ties keep the first
// site in column order. Returns the N/A sentinel when the table or the
// grand-total row is absent.
func largestSite(in *Input) (string, float64) {
	if in.SiteEmissions.Empty() {
		return SentinelNA, 0
	}

	totalRow, ok := in.SiteEmissions.Find(map[string]string{ColCategory: LabelSiteGrandTotal})
	if !ok {
		return SentinelNA, 0
	}

	name := SentinelNA
	amount := 0.0
	found := false
	for _, col := range in.SiteEmissions.Columns {
		if col == ColCategory || col == ColSubcategory || col == ColSiteSum {
			continue
		}
		value := ToNumber(totalRow[col])
		if !found || value > amount {
			name = col
			amount = value
			found = true
		}
	}

	if !found {
		return SentinelNA, 0
	}
	return name, amount
}
