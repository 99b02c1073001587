package driver

import (
	"strconv"

	"github.com/dekarrin/rosed"
)

const renderMinWidth = 80

// RenderTable draws the transition table with borders. The header row holds
// the terminal codes, the first column holds state IDs and labels, and
// accept states are marked with `*`. Empty cells are rejected moves.
func (d *DFA) RenderTable() string {
	header := []string{"state"}
	for v := 0; v < d.colCount; v++ {
		header = append(header, strconv.Itoa(v))
	}
	data := [][]string{header}
	for s := 0; s < d.rowCount; s++ {
		name := strconv.Itoa(s) + " " + d.labels[s]
		if d.accepting[s] {
			name = "*" + name
		}
		row := []string{name}
		for v := 0; v < d.colCount; v++ {
			to := d.tran[s*d.colCount+v]
			if to == Reject {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.Itoa(to))
		}
		data = append(data, row)
	}

	width := renderMinWidth
	if w := 8 * (d.colCount + 2); w > width {
		width = w
	}
	return rosed.Edit("").
		InsertTableOpts(0, data, width, rosed.Options{
			TableBorders:             true,
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
