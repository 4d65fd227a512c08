// Package parallel provides the scheduling infrastructure for stroke and
// compositing work: a work-stealing worker pool, a lock-free dirty-tile
// bitmap, and a sequencer that applies concurrently rendered stamps in
// arrival order.
//
// The canvas is divided into 64x64 pixel tiles. Compositing walks only the
// tiles a stroke touched, so the cost of a small stroke on a large canvas
// is proportional to the stroke, not the canvas.
package parallel

// Tile size constants.
const (
	// TileWidth is the width of a tile in pixels.
	// 64 pixels is optimal for work distribution (matches vello/tiny-skia).
	TileWidth = 64

	// TileHeight is the height of a tile in pixels.
	// 64 pixels keeps a full RGBA tile at 16KB, inside L1.
	TileHeight = 64
)

// GridSize returns the tile-grid dimensions covering a width x height
// pixel canvas. Zero or negative dimensions yield an empty grid.
func GridSize(width, height int) (tilesX, tilesY int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return (width + TileWidth - 1) / TileWidth, (height + TileHeight - 1) / TileHeight
}

// TileBounds returns the pixel rectangle of tile (tx, ty), clipped to the
// canvas. Edge tiles are smaller when the canvas is not a multiple of the
// tile size. Returns w = h = 0 for tiles outside the canvas.
func TileBounds(tx, ty, width, height int) (x, y, w, h int) {
	x = tx * TileWidth
	y = ty * TileHeight
	if x < 0 || y < 0 || x >= width || y >= height {
		return x, y, 0, 0
	}
	w = min(TileWidth, width-x)
	h = min(TileHeight, height-y)
	return x, y, w, h
}
