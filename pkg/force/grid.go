package force

import "math"

type cell struct{ x, y int64 }

// grid buckets point indices into square cells. Cells are as wide as the
// collision diameter, so any pair within range sits in the same or an
// adjacent cell.
type grid struct {
	size  float64
	cells map[cell][]int32
}

func newGrid() *grid {
	return &grid{cells: make(map[cell][]int32)}
}

// reset empties the grid, keeping bucket storage for reuse.
func (g *grid) reset(size float64) {
	if size != g.size {
		clear(g.cells)
	} else {
		for k, v := range g.cells {
			g.cells[k] = v[:0]
		}
	}
	g.size = size
}

func (g *grid) key(x, y float64) cell {
	return cell{int64(math.Floor(x / g.size)), int64(math.Floor(y / g.size))}
}

func (g *grid) insert(i int32, x, y float64) {
	k := g.key(x, y)
	g.cells[k] = append(g.cells[k], i)
}

// neighbours calls fn for every index in the 3x3 block of cells around (x, y).
func (g *grid) neighbours(x, y float64, fn func(int32)) {
	c := g.key(x, y)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, j := range g.cells[cell{c.x + dx, c.y + dy}] {
				fn(j)
			}
		}
	}
}
