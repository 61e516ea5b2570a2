package xl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnNumberAsLetters(t *testing.T) {
	assert.Equal(t, "A", ColumnNumberAsLetters(1))
	assert.Equal(t, "Z", ColumnNumberAsLetters(26))
	assert.Equal(t, "AA", ColumnNumberAsLetters(27))
	assert.Equal(t, "XFD", ColumnNumberAsLetters(int(MaxCols)))
}

func TestCellRef(t *testing.T) {
	assert.Equal(t, "A1", CellRef(0, 0))
	assert.Equal(t, "C7", CellRef(6, 2))
	assert.Equal(t, "XFD1048576", CellRef(MaxRows-1, MaxCols-1))
}

func TestRangeRef(t *testing.T) {
	assert.Equal(t, "A1:B2", RangeRef(0, 0, 1, 1))
	assert.Equal(t, "C3", RangeRef(2, 2, 2, 2))
	assert.Equal(t, "$A$1:$B$2", absRangeRef(0, 0, 1, 1))
}

func TestCheckCell(t *testing.T) {
	assert.NoError(t, checkCell(MaxRows-1, MaxCols-1))

	err := checkCell(MaxRows, 0)
	var rangeErr *RangeError
	assert.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, MaxRows, rangeErr.Row)

	assert.Error(t, checkCell(0, MaxCols))
}

func TestQuoteSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", quoteSheetName("Sheet1"))
	assert.Equal(t, "'Sales Data'", quoteSheetName("Sales Data"))
	assert.Equal(t, "'It''s'", quoteSheetName("It's"))
}
