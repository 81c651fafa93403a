package term

import "github.com/zeusync/handarena/internal/core/physics"

// statusRows is the number of terminal rows above the arena.
const statusRows = 1

// grid maps arena units onto terminal cells below the status line.
type grid struct {
	cols, rows    int
	width, height float64
}

func newGrid(cols, rows int, width, height float64) grid {
	return grid{cols: max(cols, 1), rows: max(rows-statusRows, 1), width: width, height: height}
}

// cell returns the terminal cell containing the arena point p.
func (g grid) cell(p physics.Vec2) (x, y int) {
	x = int(p.X / g.width * float64(g.cols))
	y = int(p.Y / g.height * float64(g.rows))
	return min(max(x, 0), g.cols-1), min(max(y, 0), g.rows-1) + statusRows
}

// normalized returns the normalized pointer for the centre of a cell.
func (g grid) normalized(x, y int) (float64, float64) {
	nx := (float64(x) + 0.5) / float64(g.cols)
	ny := (float64(y-statusRows) + 0.5) / float64(g.rows)
	return physics.Clamp(nx, 0, 1), physics.Clamp(ny, 0, 1)
}

// center returns the arena point at the centre of a cell.
func (g grid) center(x, y int) physics.Vec2 {
	nx, ny := g.normalized(x, y)
	return physics.Vec2{X: nx * g.width, Y: ny * g.height}
}
