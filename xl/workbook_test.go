package xl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSheetNameValidation(t *testing.T) {
	wb := NewWorkbook()

	var nameErr *NameError
	for _, name := range []string{
		"",
		"a name that is way too long to be a worksheet name",
		"'leading quote",
		"trailing quote'",
		"bad:name", "bad\\name", "bad/name", "bad?name", "bad*name", "bad[name", "bad]name",
	} {
		_, err := wb.AddSheet(name)
		assert.ErrorAs(t, err, &nameErr, "name %q", name)
	}

	_, err := wb.AddSheet("Perfectly Fine Name")
	assert.NoError(t, err)
}

func TestAddSheetDuplicate(t *testing.T) {
	wb := NewWorkbook()

	_, err := wb.AddSheet("Data")
	require.NoError(t, err)

	var conflict *ConflictError
	_, err = wb.AddSheet("Data")
	assert.ErrorAs(t, err, &conflict)

	// uniqueness is case-insensitive
	_, err = wb.AddSheet("DATA")
	assert.ErrorAs(t, err, &conflict)
}

func TestDefineNameValidation(t *testing.T) {
	wb := NewWorkbook()

	var nameErr *NameError
	for _, name := range []string{
		".foo", "1foo", "foo bar",
		"Foo,", "Foo/", "Foo[", "Foo]", "Foo'", "Foo\"bar", "Foo:", "Foo*",
	} {
		assert.ErrorAs(t, wb.DefineName(name, "=1"), &nameErr, "name %q", name)
	}

	assert.NoError(t, wb.DefineName("Exchange_rate", "=0.96"))
	assert.NoError(t, wb.DefineName("_hidden", "=A1"))
	assert.NoError(t, wb.DefineName(`\backslash`, "=A1"))
}

func TestDefineNameLocalScope(t *testing.T) {
	wb := NewWorkbook()
	_, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)
	_, err = wb.AddSheet("Sheet2")
	require.NoError(t, err)

	require.NoError(t, wb.DefineName("Sales", "=Sheet1!$G$1:$H$10"))
	require.NoError(t, wb.DefineName("Sheet2!Sales", "=Sheet2!$G$1:$G$10"))
	require.NoError(t, wb.prepare())

	require.Len(t, wb.resolved, 2)
	assert.Equal(t, -1, wb.resolved[0].local)
	assert.Equal(t, 1, wb.resolved[1].local)
}

func TestDefineNameUnknownSheet(t *testing.T) {
	wb := NewWorkbook()
	_, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)

	require.NoError(t, wb.DefineName("Nope!Sales", "=Nope!$A$1"))

	var nameErr *NameError
	assert.ErrorAs(t, wb.prepare(), &nameErr)
}

func TestEmptyWorkbookFailsToFinalize(t *testing.T) {
	wb := NewWorkbook()
	err := wb.Write(&bytes.Buffer{})
	assert.Error(t, err)
}

func TestPrepareCollectsAutofilterName(t *testing.T) {
	wb := NewWorkbook()
	sheet, err := wb.AddSheet("My Data")
	require.NoError(t, err)
	require.NoError(t, sheet.SetAutofilter(0, 0, 9, 2))

	require.NoError(t, wb.prepare())
	require.Len(t, wb.resolved, 1)

	dn := wb.resolved[0]
	assert.Equal(t, "_xlnm._FilterDatabase", dn.name)
	assert.Equal(t, 0, dn.local)
	assert.True(t, dn.hidden)
	assert.Equal(t, "'My Data'!$A$1:$C$10", dn.formula)
}

func TestPrepareSortsDefinedNames(t *testing.T) {
	wb := NewWorkbook()
	_, err := wb.AddSheet("Sheet1")
	require.NoError(t, err)

	require.NoError(t, wb.DefineName("zebra", "=1"))
	require.NoError(t, wb.DefineName("Apple", "=2"))
	require.NoError(t, wb.DefineName("mango", "=3"))
	require.NoError(t, wb.prepare())

	var got []string
	for _, dn := range wb.resolved {
		got = append(got, dn.name)
	}
	assert.Equal(t, []string{"Apple", "mango", "zebra"}, got)
}

func TestActiveTabResolution(t *testing.T) {
	wb := NewWorkbook()
	_, err := wb.AddSheet("One")
	require.NoError(t, err)
	second, err := wb.AddSheet("Two")
	require.NoError(t, err)

	require.NoError(t, wb.prepare())
	assert.Equal(t, 0, wb.activeTab)
	assert.True(t, wb.Sheets[0].active)

	second.SetActive()
	require.NoError(t, wb.prepare())
	assert.Equal(t, 1, wb.activeTab)
	assert.False(t, wb.Sheets[0].active)
	assert.True(t, wb.Sheets[1].active)
}

func TestRegisterFormatPassThrough(t *testing.T) {
	wb := NewWorkbook()

	id1, err := wb.RegisterFormat(Format{Font: Font{Bold: true}})
	require.NoError(t, err)
	id2, err := wb.RegisterFormat(Format{Font: Font{Bold: true}})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	assert.Equal(t, 0, wb.InternString("x"))
	assert.Equal(t, 0, wb.InternString("x"))
}
