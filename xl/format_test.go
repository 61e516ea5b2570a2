package xl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalSolidFillSwapsColors(t *testing.T) {
	f := Format{Fill: Fill{
		Pattern:    PatternSolid,
		Foreground: RGB(0x112233),
		Background: RGB(0x445566),
	}}

	c := f.canonical()
	assert.Equal(t, RGB(0x445566), c.Fill.Foreground)
	assert.Equal(t, RGB(0x112233), c.Fill.Background)
}

func TestCanonicalBackgroundOnlyBecomesSolid(t *testing.T) {
	f := Format{Fill: Fill{Background: RGB(0xFF0000)}}

	c := f.canonical()
	assert.Equal(t, PatternSolid, c.Fill.Pattern)
	assert.Equal(t, RGB(0xFF0000), c.Fill.Foreground)
	assert.False(t, c.Fill.Background.Valid)
}

func TestCanonicalForegroundOnlyBecomesSolid(t *testing.T) {
	f := Format{Fill: Fill{Foreground: RGB(0x00FF00)}}

	c := f.canonical()
	assert.Equal(t, PatternSolid, c.Fill.Pattern)
	assert.Equal(t, RGB(0x00FF00), c.Fill.Foreground)
}

func TestCanonicalKeepsExplicitPatterns(t *testing.T) {
	f := Format{Fill: Fill{Pattern: PatternGray125, Foreground: RGB(0x000000)}}
	assert.Equal(t, f, f.canonical())
}

func TestFormatIsDefault(t *testing.T) {
	var f Format
	assert.True(t, f.IsDefault())

	f.Font.Bold = true
	assert.False(t, f.IsDefault())
}

func TestColorARGB(t *testing.T) {
	assert.Equal(t, "FF112233", RGB(0x112233).argb())
	assert.Equal(t, "FF000000", RGB(0).argb())
}
