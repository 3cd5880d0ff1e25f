package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567.8, "1,234,568"},
		{999.5, "1,000"},
		{-1234567, "-1,234,567"},
		{100, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatThousands(tt.input))
		})
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "111.11", FormatRate(111.11))
	assert.Equal(t, "125", FormatRate(125.0))
	assert.Equal(t, "0", FormatRate(0))
	assert.Equal(t, "0.02", FormatRate(0.02))
	assert.Equal(t, "3.75", FormatRate(3.75))
}

func TestFormatPeriod(t *testing.T) {
	assert.Equal(t, "2024.01.01. ~ 2024.12.31.", FormatPeriod(2024))
}
