package xl

// CellType is the type of a cell value.
type CellType int

// Cell value types enumeration. This is a closed set: the xlsx format itself
// recognizes only these kinds.
const (
	CellTypeBlank CellType = iota
	CellTypeBool
	CellTypeNumber
	CellTypeSharedString
	CellTypeFormula
	CellTypeError

	// internal
	cellTypeImage
)

// cell is one entry of the sparse worksheet grid. Text is not stored here;
// WriteString interns it into the workbook string table and the cell keeps
// only the index. xf is the style id assigned by the format registry, 0 for
// the default format.
type cell struct {
	typ CellType
	xf  int

	num    float64 // CellTypeNumber
	sst    int     // CellTypeSharedString
	b      bool    // CellTypeBool
	str    string  // formula text or error code
	result string  // cached formula result, "0" when unknown
	image  *Image  // cellTypeImage
}
