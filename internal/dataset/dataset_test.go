package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_EmptyInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t  "},
		{"windows newlines only", "\r\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := Normalize(tt.input)
			assert.True(t, ds.Empty())
			assert.Empty(t, ds.Columns)
			assert.Empty(t, ds.Rows)
		})
	}
}

func TestNormalize_WellFormedCSV(t *testing.T) {
	input := "name,value\nfuel,100\nelectricity,200"
	ds := Normalize(input)

	require.Equal(t, []string{"name", "value"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "fuel", ds.Rows[0]["name"])
	assert.Equal(t, "200", ds.Rows[1]["value"])
}

func TestNormalize_QuotedFieldsWithCommas(t *testing.T) {
	input := `category,amount
"Scope 1","1,234.56"
"Scope 2","2,000.00"`
	ds := Normalize(input)

	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "1,234.56", ds.Rows[0]["amount"])
	assert.Equal(t, "Scope 1", ds.Rows[0]["category"])
}

func TestNormalize_RaggedRowsPadded(t *testing.T) {
	// Second data row is short: must be right-padded with empty strings
	input := "a,b,c\n1,2,3\n4,5"
	ds := Normalize(input)

	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "3", ds.Rows[0]["c"])
	assert.Equal(t, "4", ds.Rows[1]["a"])
	assert.Equal(t, "5", ds.Rows[1]["b"])
	assert.Equal(t, "", ds.Rows[1]["c"])
}

func TestNormalize_RaggedRowsTruncated(t *testing.T) {
	input := "a,b\n1,2,3,4\n5,6"
	ds := Normalize(input)

	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "1", ds.Rows[0]["a"])
	assert.Equal(t, "2", ds.Rows[0]["b"])
	// Values beyond the header width are dropped
	_, hasC := ds.Rows[0]["c"]
	assert.False(t, hasC)
}

func TestNormalize_UnterminatedQuote(t *testing.T) {
	// Broken quoting fails the strict parser and the per-line tokenizer;
	// the plain comma split still yields a usable row.
	input := "a,b\n\"broken,2\nok,3"
	ds := Normalize(input)

	require.Equal(t, []string{"a", "b"}, ds.Columns)
	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "ok", ds.Rows[1]["a"])
}

func TestNormalize_EveryRowHasEveryColumn(t *testing.T) {
	input := "x,y,z\n1\n1,2\n1,2,3,4"
	ds := Normalize(input)

	for _, row := range ds.Rows {
		for _, col := range ds.Columns {
			_, ok := row[col]
			assert.True(t, ok, "row missing column %q", col)
		}
	}
}

func TestNormalize_HeaderWhitespaceTrimmed(t *testing.T) {
	input := " name , value \nfuel,1"
	ds := Normalize(input)

	assert.Equal(t, []string{"name", "value"}, ds.Columns)
	assert.Equal(t, "fuel", ds.Rows[0]["name"])
}

func TestNormalize_NeverPanics(t *testing.T) {
	inputs := []string{
		"\"",
		",,,,\n,,,",
		strings.Repeat(",", 1000),
		"a\x00b,c\n1,2",
		"헤더1,헤더2\n값1",
	}
	for _, input := range inputs {
		require.NotPanics(t, func() { Normalize(input) })
	}
}

func TestFind(t *testing.T) {
	ds := Normalize("구분,세부구분,v\nScope 1,연료,10\nScope 1,합계,30\n총합,,100")

	t.Run("single criterion", func(t *testing.T) {
		row, ok := ds.Find(map[string]string{"구분": "총합"})
		require.True(t, ok)
		assert.Equal(t, "100", row["v"])
	})

	t.Run("two criteria", func(t *testing.T) {
		row, ok := ds.Find(map[string]string{"구분": "Scope 1", "세부구분": "합계"})
		require.True(t, ok)
		assert.Equal(t, "30", row["v"])
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := ds.Find(map[string]string{"구분": "Scope 9"})
		assert.False(t, ok)
	})

	t.Run("values are trimmed before comparison", func(t *testing.T) {
		padded := Normalize("구분,v\n 총합 ,7")
		row, ok := padded.Find(map[string]string{"구분": "총합"})
		require.True(t, ok)
		assert.Equal(t, "7", row["v"])
	})
}
