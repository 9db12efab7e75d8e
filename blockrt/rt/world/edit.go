package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// AddBlock places a block of type t in an air cell, growing the column when
// the cell is above its top. Placing into a solid cell does nothing.
func (w *World) AddBlock(x, y, z int, t Block) error {
	if err := w.checkCell(x, y, z); err != nil {
		return err
	}
	if !t.Solid() {
		return w.RemoveBlock(x, y, z)
	}
	if w.Get(x, y, z).Solid() {
		return nil
	}
	col := w.cubes[z][x]
	if y >= len(col) {
		col = append(col, make([]Block, y+1-len(col))...)
		w.cubes[z][x] = col
	}
	col[y] = t
	w.total++
	w.stale = true
	if w.dropped {
		return nil
	}

	if w.exposed(x, y, z) {
		w.addCache([]Instance{w.instance(x, y, z)})
	}
	// Neighbors whose last open face was this cell are now hidden.
	for _, d := range faceNeighbors {
		nx, ny, nz := x+d[0], y+d[1], z+d[2]
		if ny < 0 || !w.Get(nx, ny, nz).Solid() || w.exposed(nx, ny, nz) {
			continue
		}
		w.removeCache(nx, ny, nz)
	}
	return nil
}

// RemoveBlock clears a solid cell and reveals its solid neighbors. Clearing
// air does nothing. If the block was exposed but missing from the cache, the
// cache is dropped and an error wrapping core.ErrCacheCorrupt is returned.
func (w *World) RemoveBlock(x, y, z int) error {
	if err := w.checkCell(x, y, z); err != nil {
		return err
	}
	if !w.Get(x, y, z).Solid() {
		return nil
	}
	wasExposed := w.exposed(x, y, z)
	w.cubes[z][x][y] = Air
	w.total--
	w.stale = true
	if w.dropped {
		return nil
	}

	if wasExposed && !w.removeCache(x, y, z) {
		return w.dropCache(x, y, z)
	}
	var revealed []Instance
	for _, d := range faceNeighbors {
		nx, ny, nz := x+d[0], y+d[1], z+d[2]
		if ny < 0 || !w.Get(nx, ny, nz).Solid() {
			continue
		}
		revealed = append(revealed, w.instance(nx, ny, nz))
	}
	w.addCache(revealed)
	return nil
}

// ChangePoint edits the cell nearest a world-space point. t == Air removes.
func (w *World) ChangePoint(wx, wy, wz float32, t Block) error {
	x, y, z := w.PointToGrid(mgl32.Vec3{wx, wy, wz})
	var err error
	if t.Solid() {
		err = w.AddBlock(x, y, z, t)
	} else {
		err = w.RemoveBlock(x, y, z)
	}
	if err != nil {
		return fmt.Errorf("change point (%.2f, %.2f, %.2f): %w", wx, wy, wz, err)
	}
	return nil
}
