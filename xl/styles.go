package xl

// Hard ceilings of the xlsx format for the style catalogs.
const (
	maxCellFormats   = 65490
	maxFonts         = 32767
	firstCustomNumID = 164 // user defined number formats start here
)

// Styles is the workbook-level format registry. Registration deduplicates at
// the combined (xf) level; the primitive font/fill/border/numFmt catalogs are
// deduplicated when the registry is frozen before serialization.
//
// Style id 0 is the default format and is always present, as required by the
// xlsx specification.
type Styles struct {
	xfs      []Format // canonicalized, index == style id
	xfIndex  map[Format]int
	fontSeen map[Font]bool

	// populated by freeze
	fonts   []Font
	fills   []Fill
	borders []Border
	numFmts []string // custom codes, id = firstCustomNumID + position

	fontIdx   []int // per-xf indices into the catalogs
	fillIdx   []int
	borderIdx []int
	numIdx    []int
}

func NewStyles() *Styles {
	def := Format{}
	return &Styles{
		xfs:      []Format{def},
		xfIndex:  map[Format]int{def: 0},
		fontSeen: map[Font]bool{def.Font: true},
	}
}

// Register adds a format to the registry and returns its style id. Identical
// formats (after canonicalization) share one id; the first registration wins
// the slot.
func (st *Styles) Register(f Format) (int, error) {
	f = f.canonical()
	if id, ok := st.xfIndex[f]; ok {
		return id, nil
	}
	if len(st.xfs) >= maxCellFormats {
		return 0, &FormatLimitError{Kind: "cell formats", Limit: maxCellFormats}
	}
	if !st.fontSeen[f.Font] {
		if len(st.fontSeen) >= maxFonts {
			return 0, &FormatLimitError{Kind: "fonts", Limit: maxFonts}
		}
		st.fontSeen[f.Font] = true
	}
	id := len(st.xfs)
	st.xfs = append(st.xfs, f)
	st.xfIndex[f] = id
	return id, nil
}

// Len is the number of registered cell formats, including the default.
func (st *Styles) Len() int { return len(st.xfs) }

// freeze resolves the primitive catalogs. After this the registry is
// read-only and safe for concurrent lookups during serialization. Recomputed
// on every save so that formats registered between saves are picked up.
func (st *Styles) freeze() {
	st.fonts = nil
	st.borders = nil
	st.numFmts = nil
	st.fontIdx = nil
	st.fillIdx = nil
	st.borderIdx = nil
	st.numIdx = nil

	fontIndex := map[Font]int{}
	borderIndex := map[Border]int{}
	numIndex := map[string]int{}

	// Fills 0 (none) and 1 (gray125) are mandatory defaults that readers
	// expect at those slots even when unused.
	st.fills = []Fill{{}, {Pattern: PatternGray125}}
	fillIndex := map[Fill]int{
		st.fills[0]: 0,
		st.fills[1]: 1,
	}

	for _, xf := range st.xfs {
		fi, ok := fontIndex[xf.Font]
		if !ok {
			fi = len(st.fonts)
			fontIndex[xf.Font] = fi
			st.fonts = append(st.fonts, xf.Font)
		}
		st.fontIdx = append(st.fontIdx, fi)

		li, ok := fillIndex[xf.Fill]
		if !ok {
			li = len(st.fills)
			fillIndex[xf.Fill] = li
			st.fills = append(st.fills, xf.Fill)
		}
		st.fillIdx = append(st.fillIdx, li)

		bi, ok := borderIndex[xf.Border]
		if !ok {
			bi = len(st.borders)
			borderIndex[xf.Border] = bi
			st.borders = append(st.borders, xf.Border)
		}
		st.borderIdx = append(st.borderIdx, bi)

		if xf.NumFormat == "" {
			st.numIdx = append(st.numIdx, 0)
			continue
		}
		ni, ok := numIndex[xf.NumFormat]
		if !ok {
			ni = firstCustomNumID + len(st.numFmts)
			numIndex[xf.NumFormat] = ni
			st.numFmts = append(st.numFmts, xf.NumFormat)
		}
		st.numIdx = append(st.numIdx, ni)
	}
}
