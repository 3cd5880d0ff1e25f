package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatThousands renders an emission total as a thousands-grouped integer,
// e.g. 1234567.8 -> "1,234,568"
func FormatThousands(v float64) string {
	rounded := int64(math.Round(v))

	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}

	digits := strconv.FormatInt(rounded, 10)
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

// FormatRate renders an already-rounded percentage or intensity ratio at its
// shortest decimal representation, e.g. 111.11 -> "111.11", 125.0 -> "125"
func FormatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatPeriod renders the reporting period of a year,
// e.g. 2024 -> "2024.01.01. ~ 2024.12.31."
func FormatPeriod(year int) string {
	return fmt.Sprintf("%d.01.01. ~ %d.12.31.", year, year)
}
