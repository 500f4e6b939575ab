package domain

// ColumnProgress is the share of all tasks held by one column.
type ColumnProgress struct {
	ColumnID string
	Name     string
	Tasks    int
	Total    int
	Percent  float64
}

// Progress computes per-column progress for the current board.
func (b *Board) Progress() []ColumnProgress {
	return ComputeProgress(b.columns)
}

// ComputeProgress returns count/total*100 for every column, or 0 when the board is empty.
func ComputeProgress(columns []Column) []ColumnProgress {
	total := 0
	for _, column := range columns {
		total += len(column.Tasks)
	}
	out := make([]ColumnProgress, 0, len(columns))
	for _, column := range columns {
		count := len(column.Tasks)
		percent := 0.0
		if total > 0 {
			percent = float64(count) / float64(total) * 100
		}
		out = append(out, ColumnProgress{
			ColumnID: column.ID,
			Name:     column.Name,
			Tasks:    count,
			Total:    total,
			Percent:  percent,
		})
	}
	return out
}
