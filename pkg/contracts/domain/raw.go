package domain

// RawTable is the unprocessed input table as read from disk: arbitrary
// headers, every cell still text. No invariants hold at this stage;
// headers may be inconsistently named and cells may be blank or carry
// human-formatted numbers.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Cell returns the cell at (row, col), tolerating ragged rows: a
// position past the end of a short row reads as blank.
func (t RawTable) Cell(row, col int) string {
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}
