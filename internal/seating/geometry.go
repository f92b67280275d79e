package seating

import "strconv"

// Seat is one cell of a carriage's seat map.
type Seat struct {
	ID     string `json:"id"`
	Row    string `json:"row"`
	Col    int    `json:"col"`
	Window bool   `json:"window"`
}

// Geometry describes one carriage grid.  Prefix is prepended verbatim to
// every seat label; use ClassName.SeatPrefix to build it.
type Geometry struct {
	Rows   int
	Cols   int
	Prefix string
}

// CarriageGeometry returns the geometry of carriage n of a class layout.
func CarriageGeometry(class ClassName, layout ClassLayout, carriage int) Geometry {
	return Geometry{Rows: layout.Rows, Cols: layout.Cols, Prefix: class.SeatPrefix(carriage)}
}

// Dimensions returns rows and cols clamped to the layout bounds.  A
// non-positive dimension yields an empty grid.
func (g Geometry) Dimensions() (rows, cols int) {
	rows, cols = g.Rows, g.Cols
	if rows > MaxRows {
		rows = MaxRows
	}
	if cols > MaxCols {
		cols = MaxCols
	}
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return rows, cols
}

// Seats enumerates the grid row by row, then column by column.  The result
// depends only on the geometry, so calling it twice yields the same slice.
func (g Geometry) Seats() []Seat {
	rows, cols := g.Dimensions()
	out := make([]Seat, 0, rows*cols)
	for r := 0; r < rows; r++ {
		label := RowLabel(r)
		for c := 0; c < cols; c++ {
			out = append(out, Seat{
				ID:     g.Prefix + label + strconv.Itoa(c+1),
				Row:    label,
				Col:    c + 1,
				Window: IsWindowCol(c, cols),
			})
		}
	}
	return out
}

// Grid is Seats grouped by row.
func (g Geometry) Grid() [][]Seat {
	rows, cols := g.Dimensions()
	seats := g.Seats()
	grid := make([][]Seat, 0, rows)
	for r := 0; r < rows; r++ {
		grid = append(grid, seats[r*cols:(r+1)*cols])
	}
	return grid
}

// IsWindowCol reports whether the 0-based column index is the first or the
// last column.  Aisle placement does not matter.
func IsWindowCol(idx, cols int) bool {
	if cols <= 0 || idx < 0 || idx >= cols {
		return false
	}
	return idx == 0 || idx == cols-1
}

// AisleAfter is the number of columns left of the aisle: ceil(cols/2).
// Single-column carriages have no aisle and return 0.
func AisleAfter(cols int) int {
	if cols <= 1 {
		return 0
	}
	return (cols + 1) / 2
}
