// Package dataset provides the tabular structure shared by the metrics
// calculator and the document renderer, together with a tolerant CSV
// normalizer. Normalization is total: any input text, however malformed,
// produces a dataset without an error.
package dataset

import (
	"encoding/csv"
	"log/slog"
	"strings"
)

// Row maps a column name to its string value. Every row of a Dataset carries
// a value (possibly empty) for every declared column.
type Row map[string]string

// Dataset is an ordered sequence of named columns and rows
type Dataset struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the dataset has no rows and no columns
func (d Dataset) Empty() bool {
	return len(d.Columns) == 0 && len(d.Rows) == 0
}

// Find returns the first row whose trimmed values match every criteria entry
// exactly. Lookup is by exact string content, no fuzzy matching.
func (d Dataset) Find(criteria map[string]string) (Row, bool) {
	for _, row := range d.Rows {
		matched := true
		for col, want := range criteria {
			if strings.TrimSpace(row[col]) != want {
				matched = false
				break
			}
		}
		if matched {
			return row, true
		}
	}
	return nil, false
}

// Normalize parses raw CSV text into a Dataset. The first line is the header
// row. It tries a standards-conformant parse first; if that fails it re-parses
// leniently, tokenizing each line independently and normalizing every row to
// the header's width. Empty or whitespace-only input yields an empty dataset.
func Normalize(text string) Dataset {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Dataset{}
	}

	ds, err := parseStrict(trimmed)
	if err == nil {
		return ds
	}

	slog.Warn("strict CSV parse failed, falling back to lenient parse",
		slog.String("error", err.Error()),
		slog.Int("input_length", len(trimmed)))

	return parseLenient(trimmed)
}

// parseStrict uses encoding/csv with its default consistent-width requirement
func parseStrict(text string) (Dataset, error) {
	reader := csv.NewReader(strings.NewReader(text))
	records, err := reader.ReadAll()
	if err != nil {
		return Dataset{}, err
	}
	if len(records) == 0 {
		return Dataset{}, nil
	}
	return fromRecords(records[0], records[1:]), nil
}

// parseLenient splits on newlines and tokenizes each line on its own, so one
// broken line cannot poison the rest. Rows shorter than the header are
// right-padded with empty strings, longer rows are right-truncated.
func parseLenient(text string) Dataset {
	lines := strings.Split(text, "\n")

	var records [][]string
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, tokenizeLine(line))
	}

	if len(records) == 0 {
		return Dataset{}
	}

	header := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		switch {
		case len(rec) < len(header):
			padded := make([]string, len(header))
			copy(padded, rec)
			rows = append(rows, padded)
		case len(rec) > len(header):
			rows = append(rows, rec[:len(header)])
		default:
			rows = append(rows, rec)
		}
	}

	return fromRecords(header, rows)
}

// tokenizeLine parses a single line as CSV, falling back to a plain comma
// split when even that fails (for example an unterminated quote)
func tokenizeLine(line string) []string {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	fields, err := reader.Read()
	if err != nil {
		return strings.Split(line, ",")
	}
	return fields
}

// fromRecords builds the Dataset, assigning every declared column a value in
// every row. Callers guarantee the rows are already header-width.
func fromRecords(header []string, records [][]string) Dataset {
	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return Dataset{Columns: columns, Rows: rows}
}
