package xl

// StringTable deduplicates cell text into the workbook-level shared string
// table. Cells store the returned index instead of the text, and the table is
// emitted in first-occurrence order, which makes the indices stable for the
// lifetime of the workbook.
type StringTable struct {
	entries []string
	index   map[string]int
	refs    int
}

func NewStringTable() *StringTable {
	return &StringTable{index: map[string]int{}}
}

// Intern returns the index of s, appending it to the table on first
// occurrence. Repeated calls with an equal string return the same index.
func (st *StringTable) Intern(s string) int {
	st.refs++
	if i, ok := st.index[s]; ok {
		return i
	}
	i := len(st.entries)
	st.entries = append(st.entries, s)
	st.index[s] = i
	return i
}

// Len is the number of distinct strings in the table.
func (st *StringTable) Len() int { return len(st.entries) }

// Refs is the total number of Intern calls, including duplicates. Emitted as
// the sst "count" attribute, while Len becomes "uniqueCount".
func (st *StringTable) Refs() int { return st.refs }

// Entries returns the table in insertion order. The returned slice is owned by
// the table and must not be modified.
func (st *StringTable) Entries() []string { return st.entries }
