// Package export renders admin download payloads (lobby rosters, account
// listings) from a shared tabular sheet model.
package export

// Column describes one sheet column. Weight controls how much of the page
// width the column takes in layouts that size columns, relative to the other
// columns; zero means an equal share.
type Column struct {
	Title  string
	Weight float64
}

// Sheet is an ordered table: rows are positional and follow the column order.
type Sheet struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

// cell returns the row value for column index i, empty when the row is short.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func (s Sheet) weights() []float64 {
	weights := make([]float64, len(s.Columns))
	var total float64
	for i, col := range s.Columns {
		w := col.Weight
		if w <= 0 {
			w = 1
		}
		weights[i] = w
		total += w
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}
