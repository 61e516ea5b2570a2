package xl

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/adnsv/srw/xml"
	"golang.org/x/sync/errgroup"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
)

// Writer assembles the xlsx parts of one workbook and streams them into a
// Storage. It owns the package cross-references: relationship maps, content
// types and media. Relationship ids are assigned sequentially in a fixed
// emission order, so repeated builds of the same workbook are byte-identical.
type Writer struct {
	out            Storage
	lastGlobalId   int
	lastWorkbookId int
	lastRichDataId int

	GlobalRels          map[string]RelInfo // maps id to absolute path
	WorkbookRels        map[string]RelInfo // maps id to absolute paths
	DefaultContentTypes map[string]string  // maps path extension to content-type
	PartContentTypes    map[string]string  // maps path partname to content-type

	media    []*MediaInfo
	mediaMap map[string]*MediaInfo // maps media name to media info

	RichDataRels map[string]RelInfo
}

type RelInfo struct {
	Type   string // url to schema type
	Target string // relative path
}

type MediaInfo struct {
	Name string // hashed blob + extension
	Blob []byte
	IId  int
	RId  string
}

func NewWriter(s Storage) *Writer {
	w := &Writer{
		out:                 s,
		GlobalRels:          map[string]RelInfo{},
		WorkbookRels:        map[string]RelInfo{},
		DefaultContentTypes: map[string]string{},
		PartContentTypes:    map[string]string{},

		mediaMap: map[string]*MediaInfo{},

		RichDataRels: map[string]RelInfo{},
	}

	w.DefaultContentTypes["xml"] = "application/xml"
	w.DefaultContentTypes["rels"] = "application/vnd.openxmlformats-package.relationships+xml"

	return w
}

func (w *Writer) nextGlobalID() (int, string) {
	w.lastGlobalId++
	return w.lastGlobalId, fmt.Sprintf("rId%d", w.lastGlobalId)
}
func (w *Writer) nextWorkbookID() (int, string) {
	w.lastWorkbookId++
	return w.lastWorkbookId, fmt.Sprintf("rId%d", w.lastWorkbookId)
}
func (w *Writer) nextRichDataID() (int, string) {
	w.lastRichDataId++
	return w.lastRichDataId, fmt.Sprintf("rId%d", w.lastRichDataId)
}

// Write resolves all cross-references of the workbook, then emits every part.
// The workbook model is frozen before the first byte goes out; worksheet
// parts are rendered concurrently against the read-only model and committed
// in sheet order.
func (w *Writer) Write(wb *Workbook) error {
	var err error

	err = wb.prepare()
	if err != nil {
		return err
	}

	err = w.collectMedia(wb)
	if err != nil {
		return err
	}

	wb.styles.freeze()

	err = w.writeWorkbook(wb)
	if err != nil {
		return err
	}

	err = w.writeStyles(wb.styles)
	if err != nil {
		return err
	}

	if wb.strings.Len() > 0 {
		err = w.writeSharedStrings(wb.strings)
		if err != nil {
			return err
		}
	}

	if len(w.media) > 0 {
		err = w.writeMedia()
		if err != nil {
			return err
		}

		err = w.writeRichValueRel()
		if err != nil {
			return err
		}

		err = w.writeRels("/xl/richData/_rels/richValueRel.xml.rels", w.RichDataRels)
		if err != nil {
			return err
		}

		err = w.writeRichValueStructure()
		if err != nil {
			return err
		}

		err = w.writeRichValueData()
		if err != nil {
			return err
		}

		err = w.writeMetadata()
		if err != nil {
			return err
		}
	}

	err = w.writeCoreProperties(wb)
	if err != nil {
		return err
	}
	err = w.writeExtendedProperties(wb)
	if err != nil {
		return err
	}

	err = w.writeRels("/xl/_rels/workbook.xml.rels", w.WorkbookRels)
	if err != nil {
		return err
	}

	err = w.writeRels("/_rels/.rels", w.GlobalRels)
	if err != nil {
		return err
	}

	return w.writeContentTypes()
}

// collectMedia interns every embedded image blob into the media table before
// any worksheet is rendered, walking sheets and cells in deterministic order.
// After this pass the media table is read-only, which keeps the parallel
// sheet rendering free of shared mutable state.
func (w *Writer) collectMedia(wb *Workbook) error {
	for _, sheet := range wb.Sheets {
		err := enumerate(sheet.rows, func(_ uint32, row *rowData) error {
			return enumerate(row.cells, func(_ uint16, c cell) error {
				if c.typ != cellTypeImage {
					return nil
				}
				name, ext, err := mediaName(c.image)
				if err != nil {
					return err
				}
				if ext == ".jpeg" {
					w.DefaultContentTypes["jpeg"] = "image/jpeg"
				} else {
					w.DefaultContentTypes["png"] = "image/png"
				}
				if _, ok := w.mediaMap[name]; !ok {
					_, rid := w.nextRichDataID()
					info := &MediaInfo{
						Name: name,
						Blob: c.image.Blob,
						IId:  len(w.media),
						RId:  rid,
					}
					w.mediaMap[name] = info
					w.media = append(w.media, info)
				}
				return nil
			})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeWorkbook(wb *Workbook) error {
	_, rid := w.nextGlobalID()

	relpath := "xl/workbook.xml"
	abspath := "/" + relpath

	w.PartContentTypes[abspath] = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	w.GlobalRels[rid] = RelInfo{
		Type:   "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument",
		Target: relpath,
	}

	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("workbook")
	x.Attr("xmlns", "http://schemas.openxmlformats.org/spreadsheetml/2006/main")
	x.Attr("xmlns:r", "http://schemas.openxmlformats.org/officeDocument/2006/relationships")

	x.OTag("+workbookPr").Attr("date1904", "false").CTag()

	x.OTag("+bookViews")
	{
		x.OTag("+workbookView")
		x.Attr("xWindow", 240)
		x.Attr("yWindow", 15)
		x.Attr("windowWidth", 16095)
		x.Attr("windowHeight", 9660)
		if wb.activeTab > 0 {
			x.Attr("activeTab", wb.activeTab)
		}
		x.CTag()
	}
	x.CTag()

	type sheetPart struct {
		sheet   *Sheet
		abspath string
	}
	parts := make([]sheetPart, len(wb.Sheets))

	x.OTag("+sheets")
	for i, sheet := range wb.Sheets {
		sheetID, sheetRID := w.nextWorkbookID()

		sheetPath := fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		sheetAbs := "/xl/" + sheetPath
		w.PartContentTypes[sheetAbs] = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
		w.WorkbookRels[sheetRID] = RelInfo{
			Type:   "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet",
			Target: sheetPath,
		}
		parts[i] = sheetPart{sheet: sheet, abspath: sheetAbs}

		x.OTag("+sheet")
		x.Attr("name", sheet.Name)
		x.Attr("sheetId", sheetID)
		if sheet.hidden {
			x.Attr("state", "hidden")
		}
		x.Attr("r:id", sheetRID)
		x.CTag()
	}
	x.CTag()

	if len(wb.resolved) > 0 {
		x.OTag("+definedNames")
		for _, dn := range wb.resolved {
			x.OTag("+definedName")
			x.Attr("name", dn.name)
			if dn.local >= 0 {
				x.Attr("localSheetId", dn.local)
			}
			if dn.hidden {
				x.Attr("hidden", 1)
			}
			x.String(dn.formula)
			x.CTag()
		}
		x.CTag()
	}

	x.OTag("+calcPr").Attr("calcId", 124519).Attr("fullCalcOnLoad", 1).CTag()

	x.CTag()

	err := w.out.WriteBlob(abspath, bb.Bytes())
	if err != nil {
		return err
	}

	// The model is fully resolved at this point; worksheet parts render
	// concurrently against read-only state.
	blobs := make([][]byte, len(parts))
	g := new(errgroup.Group)
	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			blob, err := w.renderSheet(part.sheet)
			blobs[i] = blob
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, part := range parts {
		if err := w.out.WriteBlob(part.abspath, blobs[i]); err != nil {
			return err
		}
	}
	return nil
}

// renderSheet produces the worksheet part. It must not mutate the Writer or
// the workbook model: it runs concurrently for multiple sheets.
func (w *Writer) renderSheet(sh *Sheet) ([]byte, error) {
	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("worksheet")
	x.Attr("xmlns", "http://schemas.openxmlformats.org/spreadsheetml/2006/main")
	x.Attr("xmlns:r", "http://schemas.openxmlformats.org/officeDocument/2006/relationships")

	x.OTag("+dimension").Attr("ref", sh.dimensionRef()).CTag()

	x.OTag("+sheetViews")
	{
		x.OTag("+sheetView")
		if sh.active {
			x.Attr("tabSelected", 1)
		}
		if sh.zoom != 0 && sh.zoom != 100 {
			x.Attr("zoomScale", int(sh.zoom))
		}
		x.Attr("workbookViewId", 0)
		if f := sh.freeze; f != nil {
			x.OTag("+pane")
			if f.col > 0 {
				x.Attr("xSplit", int(f.col))
			}
			if f.row > 0 {
				x.Attr("ySplit", int(f.row))
			}
			x.Attr("topLeftCell", CellRef(f.row, f.col))
			switch {
			case f.row > 0 && f.col > 0:
				x.Attr("activePane", "bottomRight")
			case f.row > 0:
				x.Attr("activePane", "bottomLeft")
			default:
				x.Attr("activePane", "topRight")
			}
			x.Attr("state", "frozen")
			x.CTag()
		}
		x.CTag()
	}
	x.CTag()

	x.OTag("+sheetFormatPr").Attr("defaultRowHeight", 15).CTag()

	if spans := sh.colSpans(); len(spans) > 0 {
		x.OTag("+cols")
		for _, span := range spans {
			x.OTag("+col").Attr("min", int(span.first)+1).Attr("max", int(span.last)+1)
			if span.customWidth {
				x.Attr("width", numString(span.width)).Attr("customWidth", 1)
			} else {
				x.Attr("width", numString(8.43))
			}
			if span.hasFormat {
				x.Attr("style", span.xf)
			}
			if span.hidden {
				x.Attr("hidden", 1)
			}
			x.CTag()
		}
		x.CTag()
	}

	x.OTag("+sheetData")
	err := enumerate(sh.rows, func(rn uint32, row *rowData) error {
		x.OTag("+row").Attr("r", strconv.FormatUint(uint64(rn)+1, 10))
		if row.customHeight {
			x.Attr("ht", numString(row.height)).Attr("customHeight", 1)
		}
		if row.customFormat {
			x.Attr("s", row.xf).Attr("customFormat", 1)
		}
		if row.hidden {
			x.Attr("hidden", 1)
		}

		err := enumerate(row.cells, func(cn uint16, c cell) error {
			return w.renderCell(x, rn, cn, c)
		})
		if err != nil {
			return err
		}

		x.CTag() // row
		return nil
	})
	if err != nil {
		return nil, err
	}
	x.CTag() // sheetData

	if f := sh.autofilter; f != nil {
		x.OTag("+autoFilter").Attr("ref", RangeRef(f.r1, f.c1, f.r2, f.c2)).CTag()
	}

	if len(sh.merges) > 0 {
		x.OTag("+mergeCells").Attr("count", len(sh.merges))
		for _, m := range sh.merges {
			x.OTag("+mergeCell").Attr("ref", RangeRef(m.r1, m.c1, m.r2, m.c2)).CTag()
		}
		x.CTag()
	}

	m := sh.margins
	x.OTag("+pageMargins")
	x.Attr("left", numString(m.Left)).Attr("right", numString(m.Right))
	x.Attr("top", numString(m.Top)).Attr("bottom", numString(m.Bottom))
	x.Attr("header", numString(m.Header)).Attr("footer", numString(m.Footer))
	x.CTag()

	if sh.hasSetup {
		x.OTag("+pageSetup")
		if sh.setup.PaperSize > 0 {
			x.Attr("paperSize", int(sh.setup.PaperSize))
		}
		if sh.setup.Scale > 0 && sh.setup.Scale != 100 {
			x.Attr("scale", int(sh.setup.Scale))
		}
		if sh.setup.Landscape {
			x.Attr("orientation", "landscape")
		} else {
			x.Attr("orientation", "portrait")
		}
		x.CTag()
	}

	x.CTag() // worksheet

	return bb.Bytes(), nil
}

func (w *Writer) renderCell(x *xml.Writer, row uint32, col uint16, c cell) error {
	x.OTag("+c").Attr("r", CellRef(row, col))
	if c.xf > 0 {
		x.Attr("s", c.xf)
	}

	switch c.typ {
	case CellTypeBlank:
		// style-only cell, no value
	case CellTypeBool:
		x.Attr("t", "b")
		if c.b {
			x.OTag("v").Write("1").CTag()
		} else {
			x.OTag("v").Write("0").CTag()
		}
	case CellTypeNumber:
		x.OTag("v").Write(numString(c.num)).CTag()
	case CellTypeSharedString:
		x.Attr("t", "s")
		x.OTag("v").Write(c.sst).CTag()
	case CellTypeError:
		x.Attr("t", "e")
		x.OTag("v").Write(c.str).CTag()
	case CellTypeFormula:
		x.OTag("f").String(c.str).CTag()
		x.OTag("v").Write(c.result).CTag()
	case cellTypeImage:
		name, _, err := mediaName(c.image)
		if err != nil {
			return err
		}
		info := w.mediaMap[name]
		x.Attr("t", "e").Attr("vm", info.IId+1)
		x.OTag("v").Write("#VALUE!").CTag()
	}
	x.CTag() // c
	return nil
}

func (w *Writer) writeStyles(st *Styles) error {
	_, rid := w.nextWorkbookID()

	relpath := "styles.xml"
	abspath := "/xl/" + relpath

	w.PartContentTypes[abspath] = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	w.WorkbookRels[rid] = RelInfo{
		Type:   "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles",
		Target: relpath,
	}

	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("styleSheet")
	x.Attr("xmlns", "http://schemas.openxmlformats.org/spreadsheetml/2006/main")

	if len(st.numFmts) > 0 {
		x.OTag("+numFmts").Attr("count", len(st.numFmts))
		for i, code := range st.numFmts {
			x.OTag("+numFmt").Attr("numFmtId", firstCustomNumID+i).Attr("formatCode", code).CTag()
		}
		x.CTag()
	}

	x.OTag("+fonts").Attr("count", len(st.fonts))
	for i := range st.fonts {
		writeFont(x, &st.fonts[i])
	}
	x.CTag()

	x.OTag("+fills").Attr("count", len(st.fills))
	for i := range st.fills {
		writeFill(x, &st.fills[i])
	}
	x.CTag()

	x.OTag("+borders").Attr("count", len(st.borders))
	for i := range st.borders {
		writeBorder(x, &st.borders[i])
	}
	x.CTag()

	// The mandatory default entries at index 0 of cellStyleXfs and
	// cellStyles; readers assume their presence.
	x.OTag("+cellStyleXfs").Attr("count", 1)
	x.OTag("+xf").Attr("numFmtId", 0).Attr("fontId", 0).Attr("fillId", 0).Attr("borderId", 0).CTag()
	x.CTag()

	x.OTag("+cellXfs").Attr("count", st.Len())
	for i := range st.xfs {
		writeCellXf(x, st, i)
	}
	x.CTag()

	x.OTag("+cellStyles").Attr("count", 1)
	x.OTag("+cellStyle").Attr("name", "Normal").Attr("xfId", 0).Attr("builtinId", 0).CTag()
	x.CTag()

	x.CTag() // styleSheet

	return w.out.WriteBlob(abspath, bb.Bytes())
}

func writeFont(x *xml.Writer, f *Font) {
	x.OTag("+font")
	if f.Bold {
		x.OTag("+b").CTag()
	}
	if f.Italic {
		x.OTag("+i").CTag()
	}
	if f.Strikeout {
		x.OTag("+strike").CTag()
	}
	if f.Underline != UnderlineNone {
		x.OTag("+u")
		if f.Underline != UnderlineSingle {
			x.Attr("val", string(f.Underline))
		}
		x.CTag()
	}
	size := f.Size
	if size == 0 {
		size = 11
	}
	x.OTag("+sz").Attr("val", numString(size)).CTag()
	if f.Color.Valid {
		x.OTag("+color").Attr("rgb", f.Color.argb()).CTag()
	}
	name := f.Name
	if name == "" {
		name = "Calibri"
	}
	x.OTag("+name").Attr("val", name).CTag()
	x.OTag("+family").Attr("val", 2).CTag()
	x.CTag()
}

func writeFill(x *xml.Writer, f *Fill) {
	x.OTag("+fill")
	x.OTag("+patternFill")
	if f.Pattern == PatternNone {
		x.Attr("patternType", "none")
	} else {
		x.Attr("patternType", string(f.Pattern))
	}
	if f.Foreground.Valid {
		x.OTag("+fgColor").Attr("rgb", f.Foreground.argb()).CTag()
	}
	if f.Background.Valid {
		x.OTag("+bgColor").Attr("rgb", f.Background.argb()).CTag()
	} else if f.Foreground.Valid {
		x.OTag("+bgColor").Attr("indexed", 64).CTag()
	}
	x.CTag()
	x.CTag()
}

func writeBorder(x *xml.Writer, b *Border) {
	x.OTag("+border")
	if b.DiagonalUp {
		x.Attr("diagonalUp", 1)
	}
	if b.DiagonalDown {
		x.Attr("diagonalDown", 1)
	}
	edges := []struct {
		name xml.NameString
		edge BorderEdge
	}{
		{"left", b.Left},
		{"right", b.Right},
		{"top", b.Top},
		{"bottom", b.Bottom},
		{"diagonal", b.Diagonal},
	}
	for _, e := range edges {
		x.OTag("+" + e.name)
		if e.edge.Style != BorderNone {
			x.Attr("style", string(e.edge.Style))
			if e.edge.Color.Valid {
				x.OTag("+color").Attr("rgb", e.edge.Color.argb()).CTag()
			} else {
				x.OTag("+color").Attr("auto", 1).CTag()
			}
		}
		x.CTag()
	}
	x.CTag()
}

func writeCellXf(x *xml.Writer, st *Styles, i int) {
	xf := &st.xfs[i]

	x.OTag("+xf")
	x.Attr("numFmtId", st.numIdx[i])
	x.Attr("fontId", st.fontIdx[i])
	x.Attr("fillId", st.fillIdx[i])
	x.Attr("borderId", st.borderIdx[i])
	x.Attr("xfId", 0)
	if st.numIdx[i] > 0 {
		x.Attr("applyNumberFormat", 1)
	}
	if st.fontIdx[i] > 0 {
		x.Attr("applyFont", 1)
	}
	if st.fillIdx[i] > 0 {
		x.Attr("applyFill", 1)
	}
	if st.borderIdx[i] > 0 {
		x.Attr("applyBorder", 1)
	}

	// All apply* attributes must be out before the first child element is
	// opened.
	hasAlign := xf.Align != (Alignment{})
	hasProtection := xf.Unlocked || xf.Hidden
	if hasAlign {
		x.Attr("applyAlignment", 1)
	}
	if hasProtection {
		x.Attr("applyProtection", 1)
	}

	if a := xf.Align; hasAlign {
		x.OTag("+alignment")
		if a.Horizontal != HAlignGeneral {
			x.Attr("horizontal", string(a.Horizontal))
		}
		if a.Vertical != VAlignBottom {
			x.Attr("vertical", string(a.Vertical))
		}
		if a.Wrap {
			x.Attr("wrapText", 1)
		}
		if a.Rotation != 0 {
			// Excel encodes negative rotation as 90..180.
			rot := int(a.Rotation)
			if rot < 0 {
				rot = 90 - rot
			}
			x.Attr("textRotation", rot)
		}
		if a.Indent > 0 {
			x.Attr("indent", int(a.Indent))
		}
		if a.ShrinkToFit {
			x.Attr("shrinkToFit", 1)
		}
		x.CTag()
	}

	if hasProtection {
		x.OTag("+protection")
		if xf.Unlocked {
			x.Attr("locked", 0)
		}
		if xf.Hidden {
			x.Attr("hidden", 1)
		}
		x.CTag()
	}

	x.CTag()
}

func (w *Writer) writeSharedStrings(st *StringTable) error {
	_, rid := w.nextWorkbookID()

	relpath := "sharedStrings.xml"
	abspath := "/xl/" + relpath

	w.PartContentTypes[abspath] = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	w.WorkbookRels[rid] = RelInfo{
		Type:   "http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings",
		Target: relpath,
	}

	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("sst")
	x.Attr("xmlns", "http://schemas.openxmlformats.org/spreadsheetml/2006/main")
	x.Attr("count", st.Refs())
	x.Attr("uniqueCount", st.Len())

	for _, s := range st.Entries() {
		x.OTag("+si")
		x.OTag("t")
		if s != strings.TrimSpace(s) {
			x.Attr("xml:space", "preserve")
		}
		x.String(s)
		x.CTag()
		x.CTag()
	}

	x.CTag()

	return w.out.WriteBlob(abspath, bb.Bytes())
}

func (w *Writer) writeCoreProperties(wb *Workbook) error {
	_, rid := w.nextGlobalID()

	relpath := "docProps/core.xml"
	abspath := "/" + relpath

	w.PartContentTypes[abspath] = "application/vnd.openxmlformats-package.core-properties+xml"
	w.GlobalRels[rid] = RelInfo{
		Type:   "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties",
		Target: relpath,
	}

	p := &wb.Props

	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})

	x.XmlStandaloneDecl()
	x.OTag("cp:coreProperties")
	x.Attr("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties")
	x.Attr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	x.Attr("xmlns:dcterms", "http://purl.org/dc/terms/")
	x.Attr("xmlns:dcmitype", "http://purl.org/dc/dcmitype/")
	x.Attr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")

	if p.Title != "" {
		x.OTag("+dc:title").String(p.Title).CTag()
	}
	if p.Subject != "" {
		x.OTag("+dc:subject").String(p.Subject).CTag()
	}
	if p.Author != "" {
		x.OTag("+dc:creator").String(p.Author).CTag()
	}
	if p.Keywords != "" {
		x.OTag("+cp:keywords").String(p.Keywords).CTag()
	}
	if p.Comments != "" {
		x.OTag("+dc:description").String(p.Comments).CTag()
	}
	if p.Category != "" {
		x.OTag("+cp:category").String(p.Category).CTag()
	}

	stamp := p.created().Format(time.RFC3339)
	x.OTag("+dcterms:created")
	x.Attr("xsi:type", "dcterms:W3CDTF")
	x.Write(stamp)
	x.CTag()
	x.OTag("+dcterms:modified")
	x.Attr("xsi:type", "dcterms:W3CDTF")
	x.Write(stamp)
	x.CTag()

	x.CTag()

	return w.out.WriteBlob(abspath, bb.Bytes())
}

func (w *Writer) writeExtendedProperties(wb *Workbook) error {
	_, rid := w.nextGlobalID()

	relpath := "docProps/app.xml"
	abspath := "/" + relpath

	w.PartContentTypes[abspath] = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	w.GlobalRels[rid] = RelInfo{
		Type:   "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties",
		Target: relpath,
	}

	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("Properties")
	x.Attr("xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties")
	x.Attr("xmlns:vt", "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes")

	appname := wb.Props.Application
	if appname == "" {
		appname = "go-xlwriter"
	}
	x.OTag("+Application").String(appname).CTag()

	x.OTag("+HeadingPairs")
	x.OTag("+vt:vector").Attr("size", 2).Attr("baseType", "variant")
	x.OTag("+vt:variant")
	x.OTag("+vt:lpstr").String("Worksheets").CTag()
	x.CTag()
	x.OTag("+vt:variant")
	x.OTag("+vt:i4").Write(len(wb.Sheets)).CTag()
	x.CTag()
	x.CTag()
	x.CTag()

	x.OTag("+TitlesOfParts")
	x.OTag("+vt:vector").Attr("size", len(wb.Sheets)).Attr("baseType", "lpstr")
	for _, sheet := range wb.Sheets {
		x.OTag("+vt:lpstr").String(sheet.Name).CTag()
	}
	x.CTag()
	x.CTag()

	if wb.Props.Manager != "" {
		x.OTag("+Manager").String(wb.Props.Manager).CTag()
	}
	x.OTag("+Company").String(wb.Props.Company).CTag()

	x.CTag()

	return w.out.WriteBlob(abspath, bb.Bytes())
}

func (w *Writer) writeContentTypes() error {
	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})

	x.XmlStandaloneDecl()
	x.OTag("Types")
	x.Attr("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")
	enumerate(w.DefaultContentTypes, func(ext, ctype string) error {
		x.OTag("+Default").Attr("Extension", ext).Attr("ContentType", ctype).CTag()
		return nil
	})
	enumerate(w.PartContentTypes, func(abspath, ctype string) error {
		x.OTag("+Override").Attr("PartName", abspath).Attr("ContentType", ctype).CTag()
		return nil
	})

	x.CTag()

	return w.out.WriteBlob("[Content_Types].xml", bb.Bytes())
}

func (w *Writer) writeMedia() error {
	for _, m := range w.media {
		fn := "/xl/media/" + m.Name
		err := w.out.WriteBlob(fn, m.Blob)
		if err != nil {
			return err
		}
		w.RichDataRels[m.RId] = RelInfo{
			Type:   "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image",
			Target: "../media/" + m.Name,
		}
	}
	return nil
}

func (w *Writer) writeMetadata() error {
	_, rid := w.nextWorkbookID()

	relpath := "metadata.xml"
	abspath := "/xl/" + relpath

	w.PartContentTypes[abspath] = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheetMetadata+xml"
	w.WorkbookRels[rid] = RelInfo{
		Type:   "http://schemas.openxmlformats.org/officeDocument/2006/relationships/sheetMetadata",
		Target: relpath,
	}

	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("metadata")
	x.Attr("xmlns", "http://schemas.openxmlformats.org/spreadsheetml/2006/main")
	x.Attr("xmlns:xlrd", "http://schemas.microsoft.com/office/spreadsheetml/2017/richdata")

	x.OTag("+metadataTypes").Attr("count", 1)
	x.OTag("+metadataType")
	x.Attr("name", "XLRICHVALUE")
	x.Attr("minSupportedVersion", "120000")
	for _, s := range []xml.NameString{"copy", "pasteAll", "pasteValues",
		"merge", "splitFirst", "rowColShift", "clearFormats",
		"clearComments", "assign", "coerce"} {
		x.Attr(s, 1)
	}
	x.CTag() // metadataType
	x.CTag() // metadataTypes

	x.OTag("futureMetadata").Attr("name", "XLRICHVALUE").Attr("count", len(w.media))
	for _, m := range w.media {
		x.OTag("+bk")
		x.OTag("extLst")
		x.OTag("ext").Attr("uri", "{3e2802c4-a4d2-4d8b-9148-e3be6c30e623}")
		x.OTag("xlrd:rvb").Attr("i", m.IId).CTag()
		x.CTag() // ext
		x.CTag() // extLst
		x.CTag() // bk
	}
	x.CTag() // futureMetadata

	x.OTag("valueMetadata").Attr("count", len(w.media))
	for _, m := range w.media {
		x.OTag("+bk")
		x.OTag("rc").Attr("t", 1).Attr("v", m.IId).CTag()
		x.CTag() // bk
	}
	x.CTag() // valueMetadata

	x.CTag() // metadata

	return w.out.WriteBlob(abspath, bb.Bytes())
}

func (w *Writer) writeRichValueRel() error {
	_, rid := w.nextWorkbookID()

	relpath := "richData/richValueRel.xml"
	abspath := "/xl/" + relpath

	w.PartContentTypes[abspath] = "application/vnd.ms-excel.richvaluerel+xml"
	w.WorkbookRels[rid] = RelInfo{
		Type:   "http://schemas.microsoft.com/office/2022/10/relationships/richValueRel",
		Target: relpath,
	}

	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("richValueRels")
	x.Attr("xmlns", "http://schemas.microsoft.com/office/spreadsheetml/2022/richvaluerel")
	x.Attr("xmlns:r", "http://schemas.openxmlformats.org/officeDocument/2006/relationships")

	for _, m := range w.media {
		x.OTag("+rel")
		x.Attr("r:id", m.RId)
		x.CTag()
	}

	x.CTag()

	return w.out.WriteBlob(abspath, bb.Bytes())
}

func (w *Writer) writeRichValueStructure() error {
	_, rid := w.nextWorkbookID()

	relpath := "richData/rdrichvaluestructure.xml"
	abspath := "/xl/" + relpath

	w.PartContentTypes[abspath] = "application/vnd.ms-excel.rdrichvaluestructure+xml"
	w.WorkbookRels[rid] = RelInfo{
		Type:   "http://schemas.microsoft.com/office/2017/06/relationships/rdRichValueStructure",
		Target: relpath,
	}

	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("rvStructures")
	x.Attr("xmlns", "http://schemas.microsoft.com/office/spreadsheetml/2017/richdata")
	x.Attr("count", 1)

	// define _localImage{Id, CalcOrigin}
	x.OTag("+s").Attr("t", "_localImage")
	x.OTag("+k").Attr("n", "_rvRel:LocalImageIdentifier").Attr("t", "i").CTag()
	x.OTag("+k").Attr("n", "CalcOrigin").Attr("t", "i").CTag()
	x.CTag()

	x.CTag()

	return w.out.WriteBlob(abspath, bb.Bytes())
}

func (w *Writer) writeRichValueData() error {
	_, rid := w.nextWorkbookID()

	relpath := "richData/rdrichvalue.xml"
	abspath := "/xl/" + relpath

	w.PartContentTypes[abspath] = "application/vnd.ms-excel.rdrichvalue+xml"
	w.WorkbookRels[rid] = RelInfo{
		Type:   "http://schemas.microsoft.com/office/2017/06/relationships/rdRichValue",
		Target: relpath,
	}

	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("rvData")

	x.Attr("xmlns", "http://schemas.microsoft.com/office/spreadsheetml/2017/richdata")
	x.Attr("count", len(w.media))

	for _, m := range w.media {
		x.OTag("+rv").Attr("s", 0)
		x.OTag("v").Write(m.IId).CTag() // image resource numeric id
		x.OTag("v").Write(5).CTag()
		x.CTag()
	}

	x.CTag()

	return w.out.WriteBlob(abspath, bb.Bytes())
}

func (w *Writer) writeRels(path string, rels map[string]RelInfo) error {
	bb := bytes.Buffer{}
	x := xml.NewWriter(&bb, xml.WriterConfig{Indent: xml.Indent2Spaces})
	x.XmlStandaloneDecl()

	x.OTag("Relationships")
	x.Attr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")
	err := enumerate(rels, func(rid string, info RelInfo) error {
		x.OTag("+Relationship").Attr("Id", rid).Attr("Type", info.Type).Attr("Target", info.Target)
		x.CTag()

		return nil
	})
	if err != nil {
		return err
	}
	x.CTag()

	return w.out.WriteBlob(path, bb.Bytes())
}

// numString renders a float the way Excel expects cell values and dimension
// attributes: shortest representation that round-trips.
func numString(v float64) string {
	return strconv.FormatFloat(v, 'G', -1, 64)
}

func enumerate[M ~map[K]V, K constraints.Ordered, V any](m M, callback func(k K, v V) error) error {
	keys := maps.Keys(m)
	slices.Sort(keys)
	for _, k := range keys {
		err := callback(k, m[k])
		if err != nil {
			return err
		}
	}
	return nil
}
