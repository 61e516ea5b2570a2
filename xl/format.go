package xl

import "fmt"

// Color is an RGB color. The zero value means "not set", which lets formats
// fall back to the application defaults.
type Color struct {
	Value uint32
	Valid bool
}

// RGB creates a color from a 0xRRGGBB value.
func RGB(v uint32) Color {
	return Color{Value: v & 0xFFFFFF, Valid: true}
}

func (c Color) argb() string {
	return fmt.Sprintf("FF%06X", c.Value)
}

// Font represents font formatting properties for cell content.
// These properties correspond to the OpenXML font element as defined in ECMA-376.
type Font struct {
	Name      string        // Font name ("" = use default of Calibri)
	Size      float64       // Font size in points (0 = use default of 11)
	Bold      bool          // Bold text
	Italic    bool          // Italic text
	Underline UnderlineType // Underline style
	Strikeout bool          // Strikethrough text
	Color     Color         // Font color
}

// UnderlineType represents the type of underline formatting.
type UnderlineType string

// Underline type constants as defined in ECMA-376 (ST_UnderlineValues).
const (
	UnderlineNone             UnderlineType = ""                 // No underline (default)
	UnderlineSingle           UnderlineType = "single"           // Single underline
	UnderlineDouble           UnderlineType = "double"           // Double underline
	UnderlineSingleAccounting UnderlineType = "singleAccounting" // Single accounting underline
	UnderlineDoubleAccounting UnderlineType = "doubleAccounting" // Double accounting underline
)

// IsDefault returns true if the font uses all default properties.
func (f *Font) IsDefault() bool {
	return *f == Font{}
}

// PatternType represents a fill pattern (ST_PatternType).
type PatternType string

const (
	PatternNone       PatternType = ""
	PatternSolid      PatternType = "solid"
	PatternMediumGray PatternType = "mediumGray"
	PatternDarkGray   PatternType = "darkGray"
	PatternLightGray  PatternType = "lightGray"
	PatternGray125    PatternType = "gray125"
	PatternGray0625   PatternType = "gray0625"
)

// Fill represents the background fill of a cell.
type Fill struct {
	Pattern    PatternType
	Foreground Color
	Background Color
}

// BorderStyle represents a cell border line style (ST_BorderStyle).
type BorderStyle string

const (
	BorderNone             BorderStyle = ""
	BorderThin             BorderStyle = "thin"
	BorderMedium           BorderStyle = "medium"
	BorderDashed           BorderStyle = "dashed"
	BorderDotted           BorderStyle = "dotted"
	BorderThick            BorderStyle = "thick"
	BorderDouble           BorderStyle = "double"
	BorderHair             BorderStyle = "hair"
	BorderMediumDashed     BorderStyle = "mediumDashed"
	BorderDashDot          BorderStyle = "dashDot"
	BorderMediumDashDot    BorderStyle = "mediumDashDot"
	BorderDashDotDot       BorderStyle = "dashDotDot"
	BorderMediumDashDotDot BorderStyle = "mediumDashDotDot"
	BorderSlantDashDot     BorderStyle = "slantDashDot"
)

// BorderEdge is one edge of a cell border.
type BorderEdge struct {
	Style BorderStyle
	Color Color
}

// Border represents all edges of a cell border.
type Border struct {
	Left     BorderEdge
	Right    BorderEdge
	Top      BorderEdge
	Bottom   BorderEdge
	Diagonal BorderEdge

	DiagonalUp   bool
	DiagonalDown bool
}

// HAlign is the horizontal alignment of cell content (ST_HorizontalAlignment).
type HAlign string

const (
	HAlignGeneral      HAlign = ""
	HAlignLeft         HAlign = "left"
	HAlignCenter       HAlign = "center"
	HAlignRight        HAlign = "right"
	HAlignFill         HAlign = "fill"
	HAlignJustify      HAlign = "justify"
	HAlignCenterAcross HAlign = "centerContinuous"
	HAlignDistributed  HAlign = "distributed"
)

// VAlign is the vertical alignment of cell content (ST_VerticalAlignment).
type VAlign string

const (
	VAlignBottom      VAlign = ""
	VAlignTop         VAlign = "top"
	VAlignCenter      VAlign = "center"
	VAlignJustify     VAlign = "justify"
	VAlignDistributed VAlign = "distributed"
)

// Alignment represents the alignment properties of a cell.
type Alignment struct {
	Horizontal  HAlign
	Vertical    VAlign
	Wrap        bool
	Rotation    int16 // degrees, -90..90
	Indent      uint8
	ShrinkToFit bool
}

// Format is an immutable formatting descriptor for cells, rows and columns.
// Formats are value objects: the style registry copies them at registration,
// so mutating a Format after registering it has no effect on the registered
// style.
//
// The zero value is the default format and always maps to style id 0.
type Format struct {
	Font      Font
	Fill      Fill
	Border    Border
	Align     Alignment
	NumFormat string // number format code, e.g. "0.00" ("" = General)
	Unlocked  bool
	Hidden    bool
}

// IsDefault returns true if the format has no custom properties set.
func (f *Format) IsDefault() bool {
	return *f == Format{}
}

// canonical normalizes equivalent format representations so that the registry
// identity invariant holds: two formats that render identically collapse into
// one key.
func (f Format) canonical() Format {
	fill := &f.Fill

	// For a solid fill Excel reverses the role of the foreground and
	// background colors.
	if fill.Pattern == PatternSolid && fill.Foreground.Valid && fill.Background.Valid {
		fill.Foreground, fill.Background = fill.Background, fill.Foreground
	}

	// A background color without a pattern means the user wanted a solid fill
	// of that color.
	if (fill.Pattern == PatternNone || fill.Pattern == PatternSolid) &&
		fill.Background.Valid && !fill.Foreground.Valid {
		fill.Foreground = fill.Background
		fill.Background = Color{}
		fill.Pattern = PatternSolid
	}
	if (fill.Pattern == PatternNone || fill.Pattern == PatternSolid) &&
		!fill.Background.Valid && fill.Foreground.Valid {
		fill.Pattern = PatternSolid
	}

	return f
}
