package raster

// tile is a rectangular framebuffer region [x0,x1) × [y0,y1) with the indices of
// triangles whose bounds overlap it, in submission order.
type tile struct {
	x0, y0, x1, y1 int
	tris           []int
}

type tileGrid struct {
	size       int
	cols, rows int
	tiles      []tile
}

func newTileGrid(width, height, size int) *tileGrid {
	cols := (width + size - 1) / size
	rows := (height + size - 1) / size
	g := &tileGrid{size: size, cols: cols, rows: rows, tiles: make([]tile, 0, cols*rows)}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.tiles = append(g.tiles, tile{
				x0: c * size,
				y0: r * size,
				x1: min((c+1)*size, width),
				y1: min((r+1)*size, height),
			})
		}
	}
	return g
}

func (g *tileGrid) bin(tris []triangle) {
	for i := range tris {
		tri := &tris[i]
		for r := tri.minY / g.size; r <= tri.maxY/g.size; r++ {
			for c := tri.minX / g.size; c <= tri.maxX/g.size; c++ {
				t := &g.tiles[r*g.cols+c]
				t.tris = append(t.tris, i)
			}
		}
	}
}
