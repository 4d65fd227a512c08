package parallel

import (
	"math/bits"
	"sync/atomic"
)

// DirtyRegion tracks which tiles a stroke or layer edit touched, using an
// atomic bitmap: one bit per tile, packed into uint64 words. Stamp workers
// mark tiles concurrently while the compositor drains them, without locks.
//
// All methods are safe for concurrent use.
type DirtyRegion struct {
	// words is the atomic bitmap. Bit index = ty*tilesX + tx.
	words []atomic.Uint64

	tilesX int
	tilesY int
}

// NewDirtyRegion creates a tracker for the given tile grid. All tiles start
// clean. Returns nil for non-positive dimensions.
func NewDirtyRegion(tilesX, tilesY int) *DirtyRegion {
	if tilesX <= 0 || tilesY <= 0 {
		return nil
	}

	totalTiles := tilesX * tilesY
	numWords := (totalTiles + 63) / 64

	return &DirtyRegion{
		words:  make([]atomic.Uint64, numWords),
		tilesX: tilesX,
		tilesY: tilesY,
	}
}

// Mark marks a single tile dirty. Lock-free, O(1), out-of-bounds ignored.
func (d *DirtyRegion) Mark(tx, ty int) {
	if tx < 0 || tx >= d.tilesX || ty < 0 || ty >= d.tilesY {
		return
	}
	idx := ty*d.tilesX + tx
	d.words[idx/64].Or(1 << (idx & 63))
}

// MarkRect marks every tile intersecting the pixel rectangle. This is what
// stamp application calls with each stamp's footprint.
func (d *DirtyRegion) MarkRect(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}

	tx1 := x / TileWidth
	ty1 := y / TileHeight
	tx2 := (x + w - 1) / TileWidth
	ty2 := (y + h - 1) / TileHeight

	if tx1 < 0 {
		tx1 = 0
	}
	if ty1 < 0 {
		ty1 = 0
	}
	if tx2 >= d.tilesX {
		tx2 = d.tilesX - 1
	}
	if ty2 >= d.tilesY {
		ty2 = d.tilesY - 1
	}
	if tx1 > tx2 || ty1 > ty2 {
		return
	}

	for ty := ty1; ty <= ty2; ty++ {
		for tx := tx1; tx <= tx2; tx++ {
			d.Mark(tx, ty)
		}
	}
}

// MarkAll marks every tile dirty. Layer-level operations (opacity, blend
// mode, visibility) invalidate the whole canvas this way.
func (d *DirtyRegion) MarkAll() {
	totalTiles := d.tilesX * d.tilesY
	fullWords := totalTiles / 64
	remainder := totalTiles % 64

	for i := 0; i < fullWords; i++ {
		d.words[i].Store(^uint64(0))
	}
	if remainder > 0 {
		d.words[fullWords].Store((uint64(1) << remainder) - 1)
	}
}

// Clear marks all tiles clean.
func (d *DirtyRegion) Clear() {
	for i := range d.words {
		d.words[i].Store(0)
	}
}

// IsDirty reports whether tile (tx, ty) is dirty. Out of bounds is clean.
func (d *DirtyRegion) IsDirty(tx, ty int) bool {
	if tx < 0 || tx >= d.tilesX || ty < 0 || ty >= d.tilesY {
		return false
	}
	idx := ty*d.tilesX + tx
	return d.words[idx/64].Load()&(1<<(idx&63)) != 0
}

// IsEmpty reports whether no tiles are dirty.
func (d *DirtyRegion) IsEmpty() bool {
	for i := range d.words {
		if d.words[i].Load() != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of dirty tiles.
func (d *DirtyRegion) Count() int {
	count := 0
	totalTiles := d.tilesX * d.tilesY
	fullWords := totalTiles / 64

	for i := 0; i < fullWords; i++ {
		count += bits.OnesCount64(d.words[i].Load())
	}
	if fullWords < len(d.words) {
		remainder := totalTiles % 64
		mask := (uint64(1) << remainder) - 1
		count += bits.OnesCount64(d.words[fullWords].Load() & mask)
	}
	return count
}

// GetAndClear atomically drains the dirty set, returning tile coordinates
// as {tx, ty} pairs. The compositor processes exactly these tiles.
func (d *DirtyRegion) GetAndClear() [][2]int {
	var dirty [][2]int
	totalTiles := d.tilesX * d.tilesY

	for wordIdx := range d.words {
		word := d.words[wordIdx].Swap(0)
		if word == 0 {
			continue
		}

		for word != 0 {
			bitIdx := bits.TrailingZeros64(word)
			tileIdx := wordIdx*64 + bitIdx
			if tileIdx >= totalTiles {
				break
			}
			dirty = append(dirty, [2]int{tileIdx % d.tilesX, tileIdx / d.tilesX})
			word &^= 1 << bitIdx
		}
	}
	return dirty
}

// ForEachDirty visits each dirty tile in row-major order without clearing.
func (d *DirtyRegion) ForEachDirty(fn func(tx, ty int)) {
	if fn == nil {
		return
	}

	totalTiles := d.tilesX * d.tilesY

	for wordIdx := range d.words {
		word := d.words[wordIdx].Load()
		for word != 0 {
			bitIdx := bits.TrailingZeros64(word)
			tileIdx := wordIdx*64 + bitIdx
			if tileIdx >= totalTiles {
				break
			}
			fn(tileIdx%d.tilesX, tileIdx/d.tilesX)
			word &^= 1 << bitIdx
		}
	}
}

// TilesX returns the number of tiles horizontally.
func (d *DirtyRegion) TilesX() int { return d.tilesX }

// TilesY returns the number of tiles vertically.
func (d *DirtyRegion) TilesY() int { return d.tilesY }

// TotalTiles returns the total number of tiles.
func (d *DirtyRegion) TotalTiles() int { return d.tilesX * d.tilesY }
