package report

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fumiama/go-docx"

	"ghgreport/internal/dataset"
)

// Font sizes in half-points, the unit OOXML runs use
const (
	sizeTitle    = "36" // 18pt
	sizeHeading1 = "32" // 16pt
	sizeHeading2 = "26" // 13pt
	sizeBody     = "20" // 10pt
	sizeCell     = "18" // 9pt
)

const tableWidthTwips = 9360 // content width of a letter page with 0.5in margins

// DocumentBuilder assembles the report document. The logo path comes from
// configuration; a missing file is tolerated silently.
type DocumentBuilder struct {
	logoPath string
	logger   *slog.Logger
}

// NewDocumentBuilder creates a document builder
func NewDocumentBuilder(logoPath string, logger *slog.Logger) *DocumentBuilder {
	return &DocumentBuilder{
		logoPath: logoPath,
		logger:   logger.With(slog.String("component", "document_builder")),
	}
}

// Build assembles the full report document from the computed metrics and the
// normalized input tables. chartPath may be empty when chart rendering failed;
// the document is then produced without the image.
func (b *DocumentBuilder) Build(m *Metrics, in *Input, chartPath string) (*docx.Docx, error) {
	doc := docx.New().WithDefaultTheme()

	b.addCoverPage(doc, m)
	pageBreak(doc)

	b.addOverviewSection(doc, m, in, chartPath)
	pageBreak(doc)

	b.addDetailSection(doc, m, in)

	return doc, nil
}

// addCoverPage renders the logo (if present) and the bilingual title block
func (b *DocumentBuilder) addCoverPage(doc *docx.Docx, m *Metrics) {
	if b.logoPath != "" {
		if _, err := os.Stat(b.logoPath); err == nil {
			para := doc.AddParagraph()
			if _, err := para.AddInlineDrawingFrom(b.logoPath); err != nil {
				b.logger.Warn("failed to embed logo, cover proceeds without it",
					slog.String("path", b.logoPath),
					slog.String("error", err.Error()))
			}
		}
	}

	for i := 0; i < 6; i++ {
		doc.AddParagraph()
	}

	doc.AddParagraph().AddText(m.CompanyName).Size(sizeTitle).Bold()
	doc.AddParagraph()
	doc.AddParagraph().AddText(fmt.Sprintf("%d년 온실가스 배출량 보고서", m.ReportYear)).Size(sizeTitle).Bold()
	doc.AddParagraph().AddText(fmt.Sprintf("%d Greenhouse Gas Emission Report", m.ReportYear)).Size(sizeTitle).Bold()
}

// addOverviewSection renders the methodology narrative, the computed overview
// narrative, the primary emissions table and the trend chart
func (b *DocumentBuilder) addOverviewSection(doc *docx.Docx, m *Metrics, in *Input, chartPath string) {
	heading1(doc, "배출량 산정 개요")

	heading2(doc, "배출량 산정기준")
	for _, line := range []string{
		fmt.Sprintf("• 기업명: %s", m.CompanyName),
		fmt.Sprintf("• 보고 대상기간: %s", FormatPeriod(m.ReportYear)),
		"• 보고 대상범위: Scope 1, 2, 3",
		fmt.Sprintf("• 조직 경계: 본점 포함 총 %d개 사업장", m.WorkplaceCount),
		"• 산정 기준:",
		"  온실가스 배출권거래제의 배출량 보고 및 인증에 관한 지침 (환경부 고시 제2023-211호)",
		"  The Greenhouse Gas Protocol. A Corporate Accounting and Reporting Standard",
		"  Corporate Value Chain (Scope 3) Accounting and Reporting Standard",
		"  Technical Guidance for Calculating Scope 3 Emissions (version 1.0)",
	} {
		body(doc, line)
	}

	heading2(doc, "배출량 개요")
	body(doc, fmt.Sprintf(
		"•%d년 Scope 1, 2, 3 배출량은 %s tCO2eq 입니다. 이는 기준연도(%d년) 배출량 대비 %s%% 이며, 전년도(%d년) 배출량 대비 %s%% 입니다.",
		m.ReportYear, FormatThousands(m.TotalEmissionReportYear),
		m.BaseYear, FormatRate(m.ReportVsBaseYearRate),
		m.PreviousYear, FormatRate(m.ReportVsPreviousYearRate)))
	body(doc, fmt.Sprintf(
		"•%d년 Scope 1 배출량은 %s tCO2eq (%s%%), Scope 2 배출량은 %s tCO2eq (%s%%), Scope 3 배출량은 %s tCO2eq (%s%%)였습니다.",
		m.ReportYear,
		FormatThousands(m.Scope1Emission), FormatRate(m.Scope1Rate),
		FormatThousands(m.Scope2Emission), FormatRate(m.Scope2Rate),
		FormatThousands(m.Scope3Emission), FormatRate(m.Scope3Rate)))
	body(doc, fmt.Sprintf(
		"•%d년 가장 많이 배출한 배출부문(활동)은 \"%s\"으로 %s tCO2eq를 배출하였으며 전체 배출량의 %s%%를 차지했습니다. 가장 많이 배출한 사업장은 \"%s\"으로 %s tCO2eq를 배출하였으며 전체 배출량의 %s%%를 차지했습니다.",
		m.ReportYear,
		m.LargestSourceName, FormatThousands(m.LargestSourceAmount), FormatRate(m.LargestSourceRate),
		m.LargestSiteName, FormatThousands(m.LargestSiteAmount), FormatRate(m.LargestSiteRate)))
	body(doc, fmt.Sprintf(
		"•%d년 매출액 대비 배출량은 %s tCO2eq/백만원이며, 임직원수 대비 배출량은 %s tCO2eq/명입니다.",
		m.ReportYear,
		FormatRate(m.EmissionPerRevenueReportYear), FormatRate(m.EmissionPerEmployeeReportYear)))

	heading2(doc, "전체 배출량")
	addTable(doc, in.EmissionSummary)

	heading2(doc, "배출량 추이")
	if chartPath != "" {
		if _, err := os.Stat(chartPath); err == nil {
			para := doc.AddParagraph().Justification("center")
			if _, err := para.AddInlineDrawingFrom(chartPath); err != nil {
				b.logger.Warn("failed to embed chart image, report proceeds without it",
					slog.String("path", chartPath),
					slog.String("error", err.Error()))
			}
		}
	}
}

// addDetailSection renders the seven numbered subsections over tables 2-6
func (b *DocumentBuilder) addDetailSection(doc *docx.Docx, m *Metrics, in *Input) {
	heading1(doc, "배출량 산정 상세내역")

	heading2(doc, "1. 보고 대상 기간")
	body(doc, fmt.Sprintf("보고 대상 기간은 %s 입니다.", FormatPeriod(m.ReportYear)))

	heading2(doc, "2. 보고 대상 범위")
	body(doc, "보고 대상 범위는 Scope 1, Scope 2, Scope 3 입니다.")

	heading2(doc, "3. 보고 대상 온실가스")
	body(doc, "보고 대상 온실가스는 ⌜기후위기 대응을 위한 탄소중립∙녹색성장 기본법⌟상 6대 온실가스(CO2, CH4, N2O, HFCs, PFCs, SF6)입니다. 지구온난화지수(GWP)는 ⌜온실가스 배출권거래제의 배출량 보고 및 인증에 관한 지침⌟에 따라 IPCC 2차 보고서의 값(SAR)을 적용하였습니다.")
	addTable(doc, in.GreenhouseGases)

	heading2(doc, "4. 조직 경계")
	body(doc, fmt.Sprintf("%s 내에서 총 %d개 사업장을 대상으로 온실가스 배출량을 측정하였으며, 각 사업장의 조직 경계는 아래 표와 같습니다.",
		m.CompanyName, m.WorkplaceCount))
	addTable(doc, in.OrgBoundary)

	heading2(doc, "5. 운영 경계")
	body(doc, fmt.Sprintf("운영 경계에 따라 %s의 배출원은 직접 배출/흡수량(Scope 1), 에너지 간접 배출량(Scope 2) 및 그 밖의 간접 배출량(Scope 3)으로 분류되었으며, 세부적인 내용은 다음과 같습니다.",
		m.CompanyName))
	addTable(doc, in.OperationalBoundary)

	heading2(doc, "6. 사업장별 온실가스 배출량")
	body(doc, "각 사업장별 온실가스 배출량은 다음과 같습니다.")
	body(doc, "(단위: tCO2eq)")
	addTable(doc, in.SiteEmissions)

	heading2(doc, "7. Scope별 온실가스 배출량")
	body(doc, "각 Scope별 온실가스 배출량은 다음과 같습니다.")
	addTable(doc, in.ScopeDetail)
}

// addTable renders a dataset as a bordered grid with a bold centered header
// row and centered data cells. An empty dataset renders nothing.
func addTable(doc *docx.Docx, ds dataset.Dataset) {
	if ds.Empty() || len(ds.Columns) == 0 {
		return
	}

	table := doc.AddTable(len(ds.Rows)+1, len(ds.Columns), tableWidthTwips, nil)

	headerRow := table.TableRows[0]
	for j, col := range ds.Columns {
		cell := headerRow.TableCells[j]
		cell.AddParagraph().Justification("center").AddText(col).Size(sizeCell).Bold()
	}

	for i, row := range ds.Rows {
		cells := table.TableRows[i+1].TableCells
		for j, col := range ds.Columns {
			cells[j].AddParagraph().Justification("center").AddText(row[col]).Size(sizeCell)
		}
	}

	doc.AddParagraph()
}

func heading1(doc *docx.Docx, text string) {
	doc.AddParagraph().AddText(text).Size(sizeHeading1).Bold()
}

func heading2(doc *docx.Docx, text string) {
	doc.AddParagraph().AddText(text).Size(sizeHeading2).Bold()
}

func body(doc *docx.Docx, text string) {
	doc.AddParagraph().AddText(text).Size(sizeBody)
}

func pageBreak(doc *docx.Docx) {
	doc.AddParagraph().AddPageBreaks()
}
