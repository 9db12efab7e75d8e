package world

import (
	"fmt"
	"unsafe"

	"github.com/gekko3d/blockworld/blockrt/rt/core"
	"github.com/gekko3d/blockworld/blockrt/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// addCache appends the revealed instances that are not cached yet. The
// backing array grows to exactly what the batch needs.
func (w *World) addCache(revealed []Instance) {
	fresh := revealed[:0:0]
	for _, inst := range revealed {
		k := inst.key()
		if _, ok := w.members[k]; ok {
			continue
		}
		w.members[k] = struct{}{}
		fresh = append(fresh, inst)
	}
	if len(fresh) == 0 {
		return
	}
	if cap(w.cache)-len(w.cache) < len(fresh) {
		grown := make([]Instance, len(w.cache), len(w.cache)+len(fresh))
		copy(grown, w.cache)
		w.cache = grown
	}
	w.cache = append(w.cache, fresh...)
}

// removeCache deletes the entry for a cell, shifting the tail down to keep
// draw order. It reports whether an entry was found.
func (w *World) removeCache(x, y, z int) bool {
	k := cellKey{int16(x), int16(y), int16(z)}
	for i, inst := range w.cache {
		if inst.key() == k {
			copy(w.cache[i:], w.cache[i+1:])
			w.cache = w.cache[:len(w.cache)-1]
			delete(w.members, k)
			return true
		}
	}
	return false
}

// dropCache discards the cache after it stopped matching the grid. The
// next draw rebuilds it.
func (w *World) dropCache(x, y, z int) error {
	w.log.Warnf("world %s: no cache entry for exposed block (%d, %d, %d), dropping cache", w.ID, x, y, z)
	w.cache = nil
	w.members = nil
	w.dropped = true
	w.stale = true
	return fmt.Errorf("remove (%d, %d, %d): %w", x, y, z, core.ErrCacheCorrupt)
}

func (w *World) NeedsRebuild() bool { return w.dropped }

// Rebuild rescans the grid into a fresh cache.
func (w *World) Rebuild() error {
	w.scan()
	w.log.Infof("world %s: rebuilt cache, %d visible", w.ID, len(w.cache))
	return nil
}

func (w *World) Stale() bool   { return w.stale }
func (w *World) MarkUploaded() { w.stale = false }

func (w *World) InstanceCount() int { return len(w.cache) }

// InstanceBytes views the cache as packed Sint16x4 records.
func (w *World) InstanceBytes() []byte {
	if len(w.cache) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&w.cache[0])), len(w.cache)*gpu.InstanceStride)
}

// Placement maps grid records to world space: (grid - size/2) * 2 * cubeSize
// on x and z.
func (w *World) Placement() gpu.DrawUniforms {
	return gpu.DrawUniforms{
		Origin: mgl32.Vec3{float32(w.Width()) / 2, 0, float32(w.Depth()) / 2},
		Step:   2 * w.cubeSize,
	}
}
