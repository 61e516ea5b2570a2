package xl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringTableIntern(t *testing.T) {
	st := NewStringTable()

	assert.Equal(t, 0, st.Intern("A"))
	assert.Equal(t, 1, st.Intern("B"))
	assert.Equal(t, 0, st.Intern("A"))

	assert.Equal(t, 2, st.Len())
	assert.Equal(t, 3, st.Refs())
	assert.Equal(t, []string{"A", "B"}, st.Entries())
}

func TestStringTableIdempotent(t *testing.T) {
	st := NewStringTable()

	first := st.Intern("hello")
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, st.Intern("hello"))
	}
	assert.Equal(t, 1, st.Len())
}

func TestStringTableDistinguishesBytes(t *testing.T) {
	st := NewStringTable()

	// equality is byte-for-byte, whitespace and case included
	a := st.Intern("text")
	b := st.Intern("Text")
	c := st.Intern("text ")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 3, st.Len())
}
