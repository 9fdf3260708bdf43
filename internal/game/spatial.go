package game

import "github.com/guillu97/battlestar/internal/physics"

// spatialGrid is a fixed-size broad-phase grid over asteroids. The world is
// shifted by +limit so cell coordinates are never negative; out-of-range cells
// are clamped to the border.
type spatialGrid struct {
	cellSize float32
	offset   float32
	cols     int
	cells    [][]int
}

func newSpatialGrid(limit, cellSize float32) *spatialGrid {
	if cellSize <= 0 {
		cellSize = 100
	}
	cols := int(2*limit/cellSize) + 1
	if cols < 1 {
		cols = 1
	}
	return &spatialGrid{
		cellSize: cellSize,
		offset:   limit,
		cols:     cols,
		cells:    make([][]int, cols*cols),
	}
}

// Clear resets all cells, keeping allocated capacity
func (g *spatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *spatialGrid) cell(v float32) int {
	c := int((v + g.offset) / g.cellSize)
	if c < 0 {
		return 0
	}
	if c >= g.cols {
		return g.cols - 1
	}
	return c
}

func (g *spatialGrid) bounds(p physics.Vec2, r float32) (minX, maxX, minY, maxY int) {
	return g.cell(p.X - r), g.cell(p.X + r), g.cell(p.Y - r), g.cell(p.Y + r)
}

// InsertCircle adds idx to every cell overlapping the circle's bounding box
func (g *spatialGrid) InsertCircle(p physics.Vec2, r float32, idx int) {
	minX, maxX, minY, maxY := g.bounds(p, r)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			i := cy*g.cols + cx
			g.cells[i] = append(g.cells[i], idx)
		}
	}
}

// QueryBuf appends every index whose cells overlap the bounding box to buf.
// An index may appear more than once.
func (g *spatialGrid) QueryBuf(p physics.Vec2, r float32, buf []int) []int {
	minX, maxX, minY, maxY := g.bounds(p, r)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			buf = append(buf, g.cells[cy*g.cols+cx]...)
		}
	}
	return buf
}
