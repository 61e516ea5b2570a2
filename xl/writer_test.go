package xl

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unpack reads every part of an xlsx archive into a path -> content map.
func unpack(t *testing.T, blob []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	require.NoError(t, err)

	parts := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		parts[f.Name] = string(data)
	}
	return parts
}

func buildTestWorkbook(t *testing.T) *Workbook {
	t.Helper()
	wb := NewWorkbook()
	sheet, err := wb.AddSheet("Report")
	require.NoError(t, err)

	bold := &Format{Font: Font{Bold: true}}
	require.NoError(t, sheet.WriteString(0, 0, "A", bold))
	require.NoError(t, sheet.WriteString(1, 0, "B", nil))
	require.NoError(t, sheet.WriteString(2, 0, "A", nil))
	require.NoError(t, sheet.WriteNumber(3, 0, 1234.5, nil))
	require.NoError(t, sheet.WriteBool(4, 0, true, nil))
	require.NoError(t, sheet.WriteFormula(5, 0, "=SUM(A1:A4)", nil))
	require.NoError(t, sheet.MergeRange(6, 0, 6, 2, "merged", nil))
	require.NoError(t, sheet.SetColumnWidth(0, 2, 18))

	second, err := wb.AddSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, second.WriteString(0, 0, "B", nil))

	return wb
}

func TestWriteProducesExpectedParts(t *testing.T) {
	wb := buildTestWorkbook(t)

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	parts := unpack(t, buf.Bytes())

	for _, want := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"docProps/app.xml",
		"xl/workbook.xml",
		"xl/_rels/workbook.xml.rels",
		"xl/styles.xml",
		"xl/sharedStrings.xml",
		"xl/worksheets/sheet1.xml",
		"xl/worksheets/sheet2.xml",
	} {
		assert.Contains(t, parts, want)
	}
}

func TestWriteDeterminism(t *testing.T) {
	build := func() []byte {
		wb := buildTestWorkbook(t)
		var buf bytes.Buffer
		require.NoError(t, wb.Write(&buf))
		return buf.Bytes()
	}

	assert.Equal(t, build(), build())
}

func TestSharedStringsPart(t *testing.T) {
	wb := buildTestWorkbook(t)

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	parts := unpack(t, buf.Bytes())

	sst := parts["xl/sharedStrings.xml"]
	// "A", "B", "merged" in first-occurrence order; "A" and "B" deduplicated
	// across both worksheets
	assert.Equal(t, 1, strings.Count(sst, ">A<"))
	assert.Equal(t, 1, strings.Count(sst, ">B<"))
	assert.Less(t, strings.Index(sst, ">A<"), strings.Index(sst, ">B<"))
	assert.Contains(t, sst, `uniqueCount="3"`)

	sheet := parts["xl/worksheets/sheet1.xml"]
	// the repeated "A" at row 3 references index 0
	assert.Contains(t, sheet, `r="A3" t="s"`)
}

func TestWorksheetPartContent(t *testing.T) {
	wb := buildTestWorkbook(t)

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	parts := unpack(t, buf.Bytes())

	sheet := parts["xl/worksheets/sheet1.xml"]
	assert.Contains(t, sheet, `<dimension ref="A1:C7"`)
	assert.Contains(t, sheet, `<mergeCell ref="A7:C7"`)
	assert.Contains(t, sheet, `min="1" max="3" width="18" customWidth="1"`)
	assert.Contains(t, sheet, "<f>SUM(A1:A4)</f>")
	assert.Contains(t, sheet, `t="b"`)
	assert.Contains(t, sheet, ">1234.5<")
}

func TestWorkbookPartContent(t *testing.T) {
	wb := buildTestWorkbook(t)
	require.NoError(t, wb.DefineName("Rate", "=0.96"))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	parts := unpack(t, buf.Bytes())

	book := parts["xl/workbook.xml"]
	assert.Contains(t, book, `name="Report" sheetId="1" r:id="rId1"`)
	assert.Contains(t, book, `name="Notes" sheetId="2" r:id="rId2"`)
	assert.Contains(t, book, `<definedName name="Rate">0.96</definedName>`)

	rels := parts["xl/_rels/workbook.xml.rels"]
	assert.Contains(t, rels, `Id="rId1"`)
	assert.Contains(t, rels, "worksheets/sheet1.xml")
	assert.Contains(t, rels, "styles.xml")
	assert.Contains(t, rels, "sharedStrings.xml")
}

func TestStylesPartContent(t *testing.T) {
	wb := NewWorkbook()
	sheet, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)

	f := &Format{
		Font:      Font{Bold: true, Color: RGB(0x0000FF)},
		Fill:      Fill{Background: RGB(0xFFFF00)},
		Border:    Border{Bottom: BorderEdge{Style: BorderThin}},
		NumFormat: "0.00",
		Align:     Alignment{Horizontal: HAlignCenter, Wrap: true},
	}
	require.NoError(t, sheet.WriteNumber(0, 0, 1, f))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	parts := unpack(t, buf.Bytes())

	styles := parts["xl/styles.xml"]
	assert.Contains(t, styles, `numFmtId="164" formatCode="0.00"`)
	assert.Contains(t, styles, "<b")
	assert.Contains(t, styles, `rgb="FF0000FF"`)
	assert.Contains(t, styles, `patternType="solid"`)
	assert.Contains(t, styles, `fgColor rgb="FFFFFF00"`)
	assert.Contains(t, styles, `patternType="gray125"`)
	assert.Contains(t, styles, `style="thin"`)
	assert.Contains(t, styles, `horizontal="center"`)
	assert.Contains(t, styles, `name="Normal" xfId="0" builtinId="0"`)

	sheet1 := parts["xl/worksheets/sheet1.xml"]
	assert.Contains(t, sheet1, `r="A1" s="1"`)
}

func TestStylesAlignmentWithProtection(t *testing.T) {
	wb := NewWorkbook()
	sheet, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)

	// alignment and protection together: both apply* attributes must land on
	// the xf element before its child elements
	f := &Format{
		Align:    Alignment{Horizontal: HAlignCenter},
		Unlocked: true,
	}
	require.NoError(t, sheet.WriteNumber(0, 0, 1, f))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	parts := unpack(t, buf.Bytes())

	styles := parts["xl/styles.xml"]
	assert.Contains(t, styles, `applyAlignment="1"`)
	assert.Contains(t, styles, `applyProtection="1"`)
	assert.Contains(t, styles, `<alignment horizontal="center"`)
	assert.Contains(t, styles, `<protection locked="0"`)
}

func TestCompressionPathsAgree(t *testing.T) {
	build := func(opts Options) map[string]string {
		wb := buildTestWorkbook(t)
		var buf bytes.Buffer
		require.NoError(t, wb.WriteOptions(&buf, opts))
		return unpack(t, buf.Bytes())
	}

	software := build(Options{Compression: CompressionDeflate})
	native := build(Options{Compression: CompressionFast})

	// compressed bytes may differ between the two deflate implementations,
	// the decompressed parts must be identical
	assert.Equal(t, software, native)
}

func TestEmptySheetStillWrites(t *testing.T) {
	wb := NewWorkbook()
	_, err := wb.AddSheet("Blank")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	parts := unpack(t, buf.Bytes())

	sheet := parts["xl/worksheets/sheet1.xml"]
	assert.Contains(t, sheet, `<dimension ref="A1"`)
	assert.Contains(t, sheet, "<sheetData")
	// no shared strings part for a workbook without text
	assert.NotContains(t, parts, "xl/sharedStrings.xml")
}

func TestRowMetadataEmission(t *testing.T) {
	wb := NewWorkbook()
	sheet, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, sheet.SetRowHeight(4, 32))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	parts := unpack(t, buf.Bytes())

	// the formatted row is emitted even though it holds no cells
	assert.Contains(t, parts["xl/worksheets/sheet1.xml"], `<row r="5" ht="32" customHeight="1"`)
}

func TestFrozenPaneEmission(t *testing.T) {
	wb := NewWorkbook()
	sheet, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, sheet.FreezePanes(1, 0))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	parts := unpack(t, buf.Bytes())

	assert.Contains(t, parts["xl/worksheets/sheet1.xml"],
		`<pane ySplit="1" topLeftCell="A2" activePane="bottomLeft" state="frozen"`)
}

func TestAutofilterEmission(t *testing.T) {
	wb := NewWorkbook()
	sheet, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, sheet.SetAutofilter(0, 0, 9, 2))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	parts := unpack(t, buf.Bytes())

	assert.Contains(t, parts["xl/worksheets/sheet1.xml"], `<autoFilter ref="A1:C10"`)
	assert.Contains(t, parts["xl/workbook.xml"], `name="_xlnm._FilterDatabase" localSheetId="0" hidden="1"`)
}

func TestImageCellsShareMedia(t *testing.T) {
	wb := NewWorkbook()
	sheet, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)

	blob := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	require.NoError(t, sheet.SetCellImage(0, 0, Image{Extension: ".png", Blob: blob}, nil))
	require.NoError(t, sheet.SetCellImage(1, 0, Image{Extension: ".png", Blob: blob}, nil))

	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	parts := unpack(t, buf.Bytes())

	var mediaParts []string
	for name := range parts {
		if strings.HasPrefix(name, "xl/media/") {
			mediaParts = append(mediaParts, name)
		}
	}
	require.Len(t, mediaParts, 1)

	assert.Contains(t, parts, "xl/richData/richValueRel.xml")
	assert.Contains(t, parts, "xl/metadata.xml")
	assert.Contains(t, parts["[Content_Types].xml"], `Extension="png"`)
}

func TestSaveWritesFile(t *testing.T) {
	wb := buildTestWorkbook(t)

	path := t.TempDir() + "/out.xlsx"
	require.NoError(t, wb.Save(path))

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	assert.NotEmpty(t, zr.File)
}
