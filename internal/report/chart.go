package report

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"ghgreport/internal/dataset"
)

// Chart geometry. The stacked bars carry absolute emission values, which is
// why this draws on go-chart's renderer directly: the library's stacked bar
// type normalizes every bar to full height and would flatten the
// year-over-year comparison.
const (
	chartWidth  = 600
	chartHeight = 420

	plotLeft   = 90
	plotTop    = 64
	plotRight  = chartWidth - 140
	plotBottom = chartHeight - 56

	barWidth = 70
	yTicks   = 5
)

// Scope segment colors, bottom-up: Scope 1, Scope 2, Scope 3
var scopeColors = []drawing.Color{
	drawing.ColorFromHex("2E86AB"),
	drawing.ColorFromHex("A23B72"),
	drawing.ColorFromHex("F18F01"),
}

var (
	chartTitle     = "연도별 Scope 온실가스 배출량 추이"
	chartAxisLabel = "배출량 (tCO2eq)"

	colorAxis = drawing.Color{R: 80, G: 80, B: 80, A: 255}
	colorGrid = drawing.Color{R: 200, G: 200, B: 200, A: 255}
	colorText = drawing.Color{R: 30, G: 30, B: 30, A: 255}
)

// ChartRenderer draws the stacked emission chart. The font list comes from
// configuration so tests can substitute fixtures.
type ChartRenderer struct {
	fontPaths []string
	logger    *slog.Logger
}

// NewChartRenderer creates a chart renderer with the given candidate font
// paths
func NewChartRenderer(fontPaths []string, logger *slog.Logger) *ChartRenderer {
	return &ChartRenderer{
		fontPaths: fontPaths,
		logger:    logger.With(slog.String("component", "chart_renderer")),
	}
}

// Render draws the stacked vertical bar chart for the chart dataset and writes
// it as a PNG to outPath. The dataset is expected to hold one row per scope
// and one column per year after the leading category column. Any failure here
// is recoverable for the caller: the report is produced without the image.
func (c *ChartRenderer) Render(ds dataset.Dataset, outPath string) error {
	if ds.Empty() || len(ds.Rows) == 0 {
		return fmt.Errorf("chart dataset is empty")
	}
	if len(ds.Columns) < 2 {
		return fmt.Errorf("chart dataset needs a category column and at least one year column, got %d columns", len(ds.Columns))
	}

	categoryCol := ds.Columns[0]
	yearCols := ds.Columns[1:]

	scopes := make([]string, len(ds.Rows))
	for i, row := range ds.Rows {
		scopes[i] = row[categoryCol]
	}

	// values[year][scope]
	values := make([][]float64, len(yearCols))
	totals := make([]float64, len(yearCols))
	maxTotal := 0.0
	for j, col := range yearCols {
		values[j] = make([]float64, len(ds.Rows))
		for i, row := range ds.Rows {
			v := ToNumber(row[col])
			values[j][i] = v
			totals[j] += v
		}
		if totals[j] > maxTotal {
			maxTotal = totals[j]
		}
	}

	r, err := chart.PNG(chartWidth, chartHeight)
	if err != nil {
		return fmt.Errorf("failed to create chart renderer: %w", err)
	}

	font := c.loadFont()
	r.SetFont(font)

	c.drawBackground(r)
	c.drawTitle(r)
	c.drawGridAndAxes(r, maxTotal)
	c.drawBars(r, yearCols, values, totals, maxTotal)
	c.drawLegend(r, scopes)

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := r.Save(f); err != nil {
		return fmt.Errorf("failed to encode chart PNG: %w", err)
	}
	return nil
}

// loadFont returns the first parseable font from the configured paths,
// falling back to go-chart's default face. Korean labels render as boxes with
// the default face, which is degraded output rather than a failure.
func (c *ChartRenderer) loadFont() *truetype.Font {
	for _, path := range c.fontPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		font, err := truetype.Parse(data)
		if err != nil {
			c.logger.Warn("failed to parse font file",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		return font
	}

	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil
	}
	c.logger.Warn("no configured font available, using default face")
	return font
}

func (c *ChartRenderer) drawBackground(r chart.Renderer) {
	fillRect(r, 0, 0, chartWidth, chartHeight, drawing.ColorWhite)
}

func (c *ChartRenderer) drawTitle(r chart.Renderer) {
	r.SetFontSize(16)
	r.SetFontColor(colorText)
	box := r.MeasureText(chartTitle)
	r.Text(chartTitle, (chartWidth-box.Width())/2, plotTop-28)
}

// drawGridAndAxes draws horizontal gridlines with tick labels, the two axis
// lines, and the y-axis caption
func (c *ChartRenderer) drawGridAndAxes(r chart.Renderer, maxTotal float64) {
	ceiling := maxTotal * 1.1

	r.SetFontSize(10)
	r.SetFontColor(colorText)
	for i := 0; i <= yTicks; i++ {
		fraction := float64(i) / float64(yTicks)
		y := plotBottom - int(fraction*float64(plotBottom-plotTop))

		if i > 0 {
			r.SetStrokeColor(colorGrid)
			r.SetStrokeWidth(1)
			r.MoveTo(plotLeft, y)
			r.LineTo(plotRight, y)
			r.Stroke()
		}

		label := FormatThousands(ceiling * fraction)
		box := r.MeasureText(label)
		r.Text(label, plotLeft-box.Width()-10, y+box.Height()/2)
	}

	r.SetStrokeColor(colorAxis)
	r.SetStrokeWidth(2)
	r.MoveTo(plotLeft, plotTop)
	r.LineTo(plotLeft, plotBottom)
	r.Stroke()
	r.MoveTo(plotLeft, plotBottom)
	r.LineTo(plotRight, plotBottom)
	r.Stroke()

	r.SetFontSize(11)
	r.SetTextRotation(math.Pi * -0.5)
	box := r.MeasureText(chartAxisLabel)
	r.Text(chartAxisLabel, plotLeft-62, (plotTop+plotBottom+box.Width())/2)
	r.ClearTextRotation()
}

// drawBars draws one stacked bar per year column, a total label above each
// bar, and the year label beneath it
func (c *ChartRenderer) drawBars(r chart.Renderer, yearCols []string, values [][]float64, totals []float64, maxTotal float64) {
	ceiling := maxTotal * 1.1
	plotHeight := float64(plotBottom - plotTop)
	slot := (plotRight - plotLeft) / len(yearCols)

	for j, col := range yearCols {
		center := plotLeft + slot*j + slot/2
		left := center - barWidth/2
		right := center + barWidth/2

		bottom := plotBottom
		for i, v := range values[j] {
			if ceiling <= 0 || v <= 0 {
				continue
			}
			height := int(math.Round(v / ceiling * plotHeight))
			if height < 1 {
				height = 1
			}
			fillRect(r, left, bottom-height, right, bottom, scopeColors[i%len(scopeColors)])
			bottom -= height
		}

		r.SetFontColor(colorText)
		if totals[j] > 0 {
			r.SetFontSize(11)
			label := FormatThousands(totals[j])
			box := r.MeasureText(label)
			r.Text(label, center-box.Width()/2, bottom-6)
		}

		r.SetFontSize(11)
		box := r.MeasureText(col)
		r.Text(col, center-box.Width()/2, plotBottom+box.Height()+10)
	}
}

// drawLegend names each scope segment once, upper right
func (c *ChartRenderer) drawLegend(r chart.Renderer, scopes []string) {
	const swatch = 12
	x := plotRight + 16
	y := plotTop + 8

	r.SetFontSize(10)
	for i, scope := range scopes {
		fillRect(r, x, y, x+swatch, y+swatch, scopeColors[i%len(scopeColors)])
		r.SetFontColor(colorText)
		r.Text(scope, x+swatch+8, y+swatch-2)
		y += swatch + 10
	}
}

func fillRect(r chart.Renderer, left, top, right, bottom int, color drawing.Color) {
	r.SetFillColor(color)
	r.MoveTo(left, top)
	r.LineTo(right, top)
	r.LineTo(right, bottom)
	r.LineTo(left, bottom)
	r.Close()
	r.Fill()
}
