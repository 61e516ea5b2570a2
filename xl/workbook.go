package xl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Workbook owns the ordered worksheet list, the shared string table and the
// format registry. Sheet order is tab order is output order.
type Workbook struct {
	Props  DocProperties
	Sheets []*Sheet

	strings  *StringTable
	styles   *Styles
	sheetMap map[string]*Sheet // lowercased name

	userNames []definedName
	resolved  []definedName // rebuilt by prepare
	activeTab int
}

// DocProperties are the document metadata emitted into docProps/core.xml and
// docProps/app.xml. Created defaults to a fixed date so that repeated builds
// of the same workbook produce byte-identical files.
type DocProperties struct {
	Title       string
	Subject     string
	Author      string
	Manager     string
	Company     string
	Category    string
	Keywords    string
	Comments    string
	Application string
	Created     time.Time
}

// The fixed creation timestamp used when DocProperties.Created is unset.
var defaultCreated = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func (p *DocProperties) created() time.Time {
	if p.Created.IsZero() {
		return defaultCreated
	}
	return p.Created.UTC()
}

func NewWorkbook() *Workbook {
	return &Workbook{
		strings:  NewStringTable(),
		styles:   NewStyles(),
		sheetMap: map[string]*Sheet{},
	}
}

// AddSheet appends a worksheet with the given name. Names follow the Excel
// rules: 1..31 characters, none of :\/?*[], no leading or trailing single
// quote, and unique among the sheets of the workbook ignoring case.
func (wb *Workbook) AddSheet(name string) (*Sheet, error) {
	if err := validateSheetName(name); err != nil {
		return nil, err
	}
	key := strings.ToLower(name)
	if _, exists := wb.sheetMap[key]; exists {
		return nil, &ConflictError{Msg: fmt.Sprintf("duplicate sheet name '%s'", name)}
	}

	sheet := newSheet(name, wb.strings, wb.styles)
	wb.Sheets = append(wb.Sheets, sheet)
	wb.sheetMap[key] = sheet
	return sheet, nil
}

func validateSheetName(s string) error {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return &NameError{Name: s, Reason: "empty sheet name is not allowed"}
	} else if n > 31 {
		return &NameError{Name: s, Reason: "the sheet name is too long"}
	}
	if strings.HasPrefix(s, "'") || strings.HasSuffix(s, "'") {
		return &NameError{Name: s, Reason: "the first or last character of the sheet name can not be a single quote"}
	}
	if strings.ContainsAny(s, ":\\/?*[]") {
		return &NameError{Name: s, Reason: "the sheet name can not contain any of the characters :\\/?*[]"}
	}
	return nil
}

// RegisterFormat adds a format to the workbook style registry and returns its
// style id. Identical formats share one id.
func (wb *Workbook) RegisterFormat(f Format) (int, error) {
	return wb.styles.Register(f)
}

// InternString adds a string to the shared string table and returns its
// index.
func (wb *Workbook) InternString(s string) int {
	return wb.strings.Intern(s)
}

type definedName struct {
	name    string
	sheet   string // unquoted sheet name, "" for global names
	formula string
	local   int // resolved sheet index, -1 for global names
	hidden  bool
}

func (d *definedName) sortKey() string {
	return strings.ToLower(strings.TrimPrefix(d.name, "_xlnm."))
}

// DefineName creates a workbook variable usable in formulas, e.g.
// DefineName("Rate", "=0.96"). A name of the form "Sheet1!Sales" defines a
// local name scoped to that sheet. The formula is stored verbatim.
func (wb *Workbook) DefineName(name, formula string) error {
	dn := definedName{local: -1}
	if pos := strings.LastIndex(name, "!"); pos >= 0 {
		dn.sheet = unquoteSheetName(name[:pos])
		dn.name = name[pos+1:]
	} else {
		dn.name = name
	}

	// Excel requires the name to start with a letter or underscore.
	// Backslash is allowed but undocumented.
	first, _ := utf8.DecodeRuneInString(dn.name)
	if dn.name == "" || !isLetter(first) && first != '_' && first != '\\' {
		return &NameError{Name: dn.name, Reason: "a defined name must start with a letter or underscore"}
	}
	if strings.ContainsAny(dn.name, " ,/*[]:\"'") {
		return &NameError{Name: dn.name, Reason: `a defined name can not contain any of the characters ,/*[]:"' or space`}
	}

	dn.formula = strings.TrimPrefix(formula, "=")
	wb.userNames = append(wb.userNames, dn)
	return nil
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 127
}

func unquoteSheetName(s string) string {
	if !strings.HasPrefix(s, "'") || !strings.HasSuffix(s, "'") || len(s) < 2 {
		return s
	}
	return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
}

// prepare resolves every cross-reference before any XML is emitted: sheet
// indices for local defined names, autofilter and print-area names, and the
// active tab. It is re-runnable so a workbook can be saved more than once.
func (wb *Workbook) prepare() error {
	if len(wb.Sheets) == 0 {
		return errors.New("the workbook has no worksheets, at least one is required")
	}

	wb.activeTab = 0
	for i, sheet := range wb.Sheets {
		if sheet.active {
			wb.activeTab = i
		}
	}
	for i, sheet := range wb.Sheets {
		sheet.active = i == wb.activeTab
	}

	index := map[string]int{}
	for i, sheet := range wb.Sheets {
		index[strings.ToLower(sheet.Name)] = i
	}

	names := make([]definedName, 0, len(wb.userNames))
	names = append(names, wb.userNames...)
	for i, sheet := range wb.Sheets {
		quoted := quoteSheetName(sheet.Name)
		if f := sheet.autofilter; f != nil {
			names = append(names, definedName{
				name:    "_xlnm._FilterDatabase",
				sheet:   sheet.Name,
				local:   i,
				hidden:  true,
				formula: quoted + "!" + absRangeRef(f.r1, f.c1, f.r2, f.c2),
			})
		}
		if a := sheet.printArea; a != nil {
			names = append(names, definedName{
				name:    "_xlnm.Print_Area",
				sheet:   sheet.Name,
				local:   i,
				formula: quoted + "!" + absRangeRef(a.r1, a.c1, a.r2, a.c2),
			})
		}
	}

	for i := range names {
		dn := &names[i]
		if dn.sheet == "" {
			continue
		}
		idx, ok := index[strings.ToLower(dn.sheet)]
		if !ok {
			return &NameError{Name: dn.name, Reason: fmt.Sprintf("unknown worksheet '%s' in defined name", dn.sheet)}
		}
		dn.local = idx
	}

	// Excel stores defined names sorted.
	sort.SliceStable(names, func(i, j int) bool {
		a, b := names[i].sortKey(), names[j].sortKey()
		if a != b {
			return a < b
		}
		return names[i].formula < names[j].formula
	})
	wb.resolved = names

	return nil
}

// Save writes the workbook to an xlsx file at the given path.
func (wb *Workbook) Save(path string) error {
	return wb.SaveOptions(path, Options{})
}

// SaveOptions writes the workbook to an xlsx file with explicit packaging
// options.
func (wb *Workbook) SaveOptions(path string, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := wb.WriteOptions(f, opts); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Write streams the workbook as an xlsx archive into out.
func (wb *Workbook) Write(out io.Writer) error {
	return wb.WriteOptions(out, Options{})
}

// WriteOptions streams the workbook with explicit packaging options. On
// failure the zip central directory is never written, so no reader will
// accept the partial output as a valid document.
func (wb *Workbook) WriteOptions(out io.Writer, opts Options) error {
	zs := NewZipStorageOptions(out, opts)
	w := NewWriter(zs)
	if err := w.Write(wb); err != nil {
		return err
	}
	return zs.Close()
}
