package xl

import (
	"fmt"
	"strings"
)

// Sheet is a single worksheet: a sparse cell grid plus layout metadata. Sheets
// are created through Workbook.AddSheet, which hands them the workbook's
// string table and format registry. A sheet never references its workbook.
type Sheet struct {
	Name string

	strings *StringTable
	styles  *Styles

	rows   map[uint32]*rowData
	cols   map[uint16]*colData
	merges []rect

	freeze     *freezePos
	autofilter *rect
	printArea  *rect
	setup      PageSetup
	hasSetup   bool
	margins    Margins

	active bool
	hidden bool
	zoom   uint16

	hasDim         bool
	minRow, maxRow uint32
	minCol, maxCol uint16
}

type rowData struct {
	cells map[uint16]cell

	height       float64
	customHeight bool
	xf           int
	customFormat bool
	hidden       bool
}

type colData struct {
	width       float64
	customWidth bool
	xf          int
	hasFormat   bool
	hidden      bool
}

type rect struct {
	r1 uint32
	c1 uint16
	r2 uint32
	c2 uint16
}

func (a rect) overlaps(b rect) bool {
	return a.r1 <= b.r2 && b.r1 <= a.r2 && a.c1 <= b.c2 && b.c1 <= a.c2
}

type freezePos struct {
	row uint32
	col uint16
}

// PageSetup holds the print layout parameters of a worksheet.
type PageSetup struct {
	Landscape bool
	PaperSize uint16 // ECMA-376 paper size code, 0 = printer default
	Scale     uint16 // print scale percentage, 0 = 100
}

// Margins are the page margins in inches.
type Margins struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
	Header float64
	Footer float64
}

func defaultMargins() Margins {
	return Margins{Left: 0.7, Right: 0.7, Top: 0.75, Bottom: 0.75, Header: 0.3, Footer: 0.3}
}

func newSheet(name string, strings *StringTable, styles *Styles) *Sheet {
	return &Sheet{
		Name:    name,
		strings: strings,
		styles:  styles,
		rows:    map[uint32]*rowData{},
		cols:    map[uint16]*colData{},
		margins: defaultMargins(),
	}
}

// xfID resolves an optional format into a style id, registering it on the
// fly. A nil format maps to the default style 0.
func (s *Sheet) xfID(f *Format) (int, error) {
	if f == nil {
		return 0, nil
	}
	return s.styles.Register(*f)
}

func (s *Sheet) rowAt(n uint32) *rowData {
	r, ok := s.rows[n]
	if !ok {
		r = &rowData{cells: map[uint16]cell{}}
		s.rows[n] = r
	}
	return r
}

func (s *Sheet) touch(row uint32, col uint16) {
	if !s.hasDim {
		s.hasDim = true
		s.minRow, s.maxRow = row, row
		s.minCol, s.maxCol = col, col
		return
	}
	s.minRow = min(s.minRow, row)
	s.maxRow = max(s.maxRow, row)
	s.minCol = min(s.minCol, col)
	s.maxCol = max(s.maxCol, col)
}

func (s *Sheet) setCell(row uint32, col uint16, c cell, f *Format) error {
	if err := checkCell(row, col); err != nil {
		return err
	}
	xf, err := s.xfID(f)
	if err != nil {
		return err
	}
	c.xf = xf
	s.rowAt(row).cells[col] = c
	s.touch(row, col)
	return nil
}

// WriteNumber writes a numeric cell. Pass a nil format for the default style.
func (s *Sheet) WriteNumber(row uint32, col uint16, v float64, f *Format) error {
	return s.setCell(row, col, cell{typ: CellTypeNumber, num: v}, f)
}

// WriteString writes a text cell. The text is interned into the workbook
// shared string table immediately; the cell stores only the index.
func (s *Sheet) WriteString(row uint32, col uint16, v string, f *Format) error {
	if err := checkCell(row, col); err != nil {
		return err
	}
	return s.setCell(row, col, cell{typ: CellTypeSharedString, sst: s.strings.Intern(v)}, f)
}

// WriteBool writes a boolean cell.
func (s *Sheet) WriteBool(row uint32, col uint16, v bool, f *Format) error {
	return s.setCell(row, col, cell{typ: CellTypeBool, b: v}, f)
}

// WriteFormula writes a formula cell. The formula is stored verbatim (a
// leading "=" is stripped) and never evaluated; readers recalculate on load.
// The cached result defaults to 0.
func (s *Sheet) WriteFormula(row uint32, col uint16, formula string, f *Format) error {
	return s.WriteFormulaResult(row, col, formula, "0", f)
}

// WriteFormulaResult writes a formula cell with an explicit cached result for
// readers that do not recalculate.
func (s *Sheet) WriteFormulaResult(row uint32, col uint16, formula, result string, f *Format) error {
	formula = strings.TrimPrefix(formula, "=")
	return s.setCell(row, col, cell{typ: CellTypeFormula, str: formula, result: result}, f)
}

// WriteBlank writes an empty but formatted cell. Blank cells without a format
// carry no information, so writing one with a nil format is a no-op beyond
// the bounds check.
func (s *Sheet) WriteBlank(row uint32, col uint16, f *Format) error {
	if f == nil {
		return checkCell(row, col)
	}
	return s.setCell(row, col, cell{typ: CellTypeBlank}, f)
}

// WriteError writes an error value cell such as "#N/A" or "#DIV/0!".
func (s *Sheet) WriteError(row uint32, col uint16, code string, f *Format) error {
	return s.setCell(row, col, cell{typ: CellTypeError, str: code}, f)
}

// SetCellImage embeds a picture into a cell as a local image rich value.
// Identical blobs are stored once in the package.
func (s *Sheet) SetCellImage(row uint32, col uint16, img Image, f *Format) error {
	if _, _, err := mediaName(&img); err != nil {
		return err
	}
	return s.setCell(row, col, cell{typ: cellTypeImage, image: &img}, f)
}

// MergeRange merges the rectangle (r1,c1)-(r2,c2) into a single display cell.
// The text is written into the top-left cell and the remaining cells are
// blanked with the same format so that borders render across the whole range.
// Overlapping a previously merged range fails with a ConflictError.
func (s *Sheet) MergeRange(r1 uint32, c1 uint16, r2 uint32, c2 uint16, text string, f *Format) error {
	if err := checkRange(r1, c1, r2, c2); err != nil {
		return err
	}
	if r1 == r2 && c1 == c2 {
		return &RangeError{Row: r1, Col: c1,
			Msg: fmt.Sprintf("cannot merge the single cell %s", CellRef(r1, c1))}
	}
	m := rect{r1, c1, r2, c2}
	for _, prev := range s.merges {
		if m.overlaps(prev) {
			return &ConflictError{Msg: fmt.Sprintf(
				"merge range %s overlaps the existing merge range %s",
				RangeRef(r1, c1, r2, c2), RangeRef(prev.r1, prev.c1, prev.r2, prev.c2))}
		}
	}

	if err := s.WriteString(r1, c1, text, f); err != nil {
		return err
	}
	xf, err := s.xfID(f)
	if err != nil {
		return err
	}
	for row := r1; row <= r2; row++ {
		for col := c1; col <= c2; col++ {
			if row == r1 && col == c1 {
				continue
			}
			s.rowAt(row).cells[col] = cell{typ: CellTypeBlank, xf: xf}
			s.touch(row, col)
		}
	}

	s.merges = append(s.merges, m)
	return nil
}

// SetColumnWidth sets the width, in character units, of the columns first
// through last inclusive. Contiguous columns with identical properties are
// compacted into a single col record on output.
func (s *Sheet) SetColumnWidth(first, last uint16, width float64) error {
	return s.eachCol(first, last, func(c *colData) {
		c.width = width
		c.customWidth = true
	})
}

// SetColumnFormat sets the default format of the columns first through last
// inclusive.
func (s *Sheet) SetColumnFormat(first, last uint16, f *Format) error {
	xf, err := s.xfID(f)
	if err != nil {
		return err
	}
	return s.eachCol(first, last, func(c *colData) {
		c.xf = xf
		c.hasFormat = xf != 0
	})
}

// SetColumnHidden hides the columns first through last inclusive.
func (s *Sheet) SetColumnHidden(first, last uint16) error {
	return s.eachCol(first, last, func(c *colData) {
		c.hidden = true
	})
}

func (s *Sheet) eachCol(first, last uint16, apply func(*colData)) error {
	if first > last || last >= MaxCols {
		return &RangeError{Col: last}
	}
	for n := first; ; n++ {
		c, ok := s.cols[n]
		if !ok {
			c = &colData{}
			s.cols[n] = c
		}
		apply(c)
		if n == last {
			return nil
		}
	}
}

// SetRowHeight sets the height of a row in points. The row element is emitted
// even when the row holds no cells, because readers apply heights from row
// metadata only.
func (s *Sheet) SetRowHeight(row uint32, height float64) error {
	if row >= MaxRows {
		return &RangeError{Row: row}
	}
	r := s.rowAt(row)
	r.height = height
	r.customHeight = true
	return nil
}

// SetRowFormat sets the default format of a row.
func (s *Sheet) SetRowFormat(row uint32, f *Format) error {
	if row >= MaxRows {
		return &RangeError{Row: row}
	}
	xf, err := s.xfID(f)
	if err != nil {
		return err
	}
	r := s.rowAt(row)
	r.xf = xf
	r.customFormat = xf != 0
	return nil
}

// SetRowHidden hides a row.
func (s *Sheet) SetRowHidden(row uint32) error {
	if row >= MaxRows {
		return &RangeError{Row: row}
	}
	s.rowAt(row).hidden = true
	return nil
}

// FreezePanes freezes the rows above row and the columns left of col. Both
// zero clears the freeze.
func (s *Sheet) FreezePanes(row uint32, col uint16) error {
	if err := checkCell(row, col); err != nil {
		return err
	}
	if row == 0 && col == 0 {
		s.freeze = nil
		return nil
	}
	s.freeze = &freezePos{row: row, col: col}
	return nil
}

// SetAutofilter turns on the filter dropdowns for the header row of the given
// range. The range also surfaces as the hidden _xlnm._FilterDatabase defined
// name in the workbook.
func (s *Sheet) SetAutofilter(r1 uint32, c1 uint16, r2 uint32, c2 uint16) error {
	if err := checkRange(r1, c1, r2, c2); err != nil {
		return err
	}
	s.autofilter = &rect{r1, c1, r2, c2}
	return nil
}

// SetPrintArea restricts printing to the given range, stored as the
// _xlnm.Print_Area defined name.
func (s *Sheet) SetPrintArea(r1 uint32, c1 uint16, r2 uint32, c2 uint16) error {
	if err := checkRange(r1, c1, r2, c2); err != nil {
		return err
	}
	s.printArea = &rect{r1, c1, r2, c2}
	return nil
}

// SetPageSetup sets the print layout parameters.
func (s *Sheet) SetPageSetup(p PageSetup) {
	s.setup = p
	s.hasSetup = true
}

// SetMargins overrides the default page margins.
func (s *Sheet) SetMargins(m Margins) {
	s.margins = m
}

// SetZoom sets the worksheet zoom factor in the 10..400 percent range.
func (s *Sheet) SetZoom(pct uint16) error {
	if pct < 10 || pct > 400 {
		return fmt.Errorf("zoom factor %d outside the 10..400 range", pct)
	}
	s.zoom = pct
	return nil
}

// SetActive makes this the selected tab when the file is opened.
func (s *Sheet) SetActive() { s.active = true }

// SetHidden hides the worksheet tab.
func (s *Sheet) SetHidden() { s.hidden = true }

// dimensionRef is the used-range reference for the sheet dimension element.
func (s *Sheet) dimensionRef() string {
	if !s.hasDim {
		return "A1"
	}
	return RangeRef(s.minRow, s.minCol, s.maxRow, s.maxCol)
}

type colSpan struct {
	first, last uint16
	colData
}

// colSpans compacts the per-column settings into min/max runs with identical
// properties, so that a thousand identically formatted columns produce one
// col record instead of a thousand.
func (s *Sheet) colSpans() []colSpan {
	var spans []colSpan
	enumerate(s.cols, func(n uint16, c *colData) error {
		if len(spans) > 0 {
			prev := &spans[len(spans)-1]
			if prev.last+1 == n && prev.colData == *c {
				prev.last = n
				return nil
			}
		}
		spans = append(spans, colSpan{first: n, last: n, colData: *c})
		return nil
	})
	return spans
}
