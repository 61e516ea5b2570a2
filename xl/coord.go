package xl

import "strconv"

// Worksheet limits of the xlsx format. Rows and columns are 0-based, so the
// largest addressable cell is (MaxRows-1, MaxCols-1).
const (
	MaxRows uint32 = 1_048_576
	MaxCols uint16 = 16_384
)

func checkCell(row uint32, col uint16) error {
	if row >= MaxRows || col >= MaxCols {
		return &RangeError{Row: row, Col: col}
	}
	return nil
}

func checkRange(r1 uint32, c1 uint16, r2 uint32, c2 uint16) error {
	if err := checkCell(r1, c1); err != nil {
		return err
	}
	if err := checkCell(r2, c2); err != nil {
		return err
	}
	if r1 > r2 || c1 > c2 {
		return &RangeError{Row: r1, Col: c1}
	}
	return nil
}

// ColumnNumberAsLetters converts a 1-based column number into A1-notation
// letters: 1 -> "A", 26 -> "Z", 27 -> "AA".
func ColumnNumberAsLetters(n int) string {
	if n < 1 {
		panic("invalid column number")
	}
	var s string
	for n > 0 {
		s = string(rune((n-1)%26+65)) + s
		n = (n - 1) / 26
	}
	return s
}

// CellRef converts a 0-based (row, col) coordinate into an A1-notation
// reference like "C7".
func CellRef(row uint32, col uint16) string {
	return ColumnNumberAsLetters(int(col)+1) + strconv.FormatUint(uint64(row)+1, 10)
}

// absCellRef is the anchored form used in defined names: "$C$7".
func absCellRef(row uint32, col uint16) string {
	return "$" + ColumnNumberAsLetters(int(col)+1) + "$" + strconv.FormatUint(uint64(row)+1, 10)
}

// RangeRef converts a 0-based rectangle into an A1-notation range like
// "A1:C7". A single-cell rectangle collapses to a plain cell reference.
func RangeRef(r1 uint32, c1 uint16, r2 uint32, c2 uint16) string {
	if r1 == r2 && c1 == c2 {
		return CellRef(r1, c1)
	}
	return CellRef(r1, c1) + ":" + CellRef(r2, c2)
}

func absRangeRef(r1 uint32, c1 uint16, r2 uint32, c2 uint16) string {
	if r1 == r2 && c1 == c2 {
		return absCellRef(r1, c1)
	}
	return absCellRef(r1, c1) + ":" + absCellRef(r2, c2)
}

// quoteSheetName wraps a sheet name in single quotes when it contains
// characters that Excel requires to be quoted inside formulas and defined
// names. Embedded quotes are doubled.
func quoteSheetName(name string) string {
	plain := true
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
		default:
			plain = false
		}
	}
	if plain && name != "" {
		return name
	}
	quoted := make([]rune, 0, len(name)+2)
	quoted = append(quoted, '\'')
	for _, r := range name {
		if r == '\'' {
			quoted = append(quoted, '\'')
		}
		quoted = append(quoted, r)
	}
	return string(append(quoted, '\''))
}
