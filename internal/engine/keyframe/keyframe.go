// Package keyframe stores per-frame snapshots and derives values for frames
// in between them.
package keyframe

import (
	"slices"
	"sort"
)

// Interpolator is a value that can be linearly blended with another of its kind.
type Interpolator[V any] interface {
	Lerp(other V, t float32) V
}

// Table maps frame numbers to authored values. The zero value is ready to use.
type Table[V any] struct {
	values map[int]V
}

// Set stores v at frame, replacing any existing entry wholesale.
func (t *Table[V]) Set(frame int, v V) {
	if t.values == nil {
		t.values = make(map[int]V)
	}
	t.values[frame] = v
}

// Get returns the value authored at frame.
func (t *Table[V]) Get(frame int) (V, bool) {
	v, ok := t.values[frame]
	return v, ok
}

// Has reports whether frame is a keyframe.
func (t *Table[V]) Has(frame int) bool {
	_, ok := t.values[frame]
	return ok
}

// Delete removes frame. It reports whether an entry existed.
func (t *Table[V]) Delete(frame int) bool {
	if _, ok := t.values[frame]; !ok {
		return false
	}
	delete(t.values, frame)
	return true
}

// Len returns the number of keyframes.
func (t *Table[V]) Len() int {
	return len(t.values)
}

// Frames returns the keyframe numbers in ascending order.
func (t *Table[V]) Frames() []int {
	frames := make([]int, 0, len(t.values))
	for f := range t.values {
		frames = append(frames, f)
	}
	slices.Sort(frames)
	return frames
}

// Clone returns an independent copy of the table.
func (t *Table[V]) Clone() Table[V] {
	out := Table[V]{}
	for f, v := range t.values {
		out.Set(f, v)
	}
	return out
}

// Display returns the value an editor should show at frame without
// interpolating: the exact keyframe, else the latest one before frame, else
// the earliest one. The second result is the keyframe that was chosen.
// An empty table yields def and false.
func (t *Table[V]) Display(frame int, def V) (V, int, bool) {
	frames := t.Frames()
	if len(frames) == 0 {
		return def, 0, false
	}

	// Index of the first keyframe after frame.
	i := sort.SearchInts(frames, frame+1)
	if i == 0 {
		return t.values[frames[0]], frames[0], true
	}
	k := frames[i-1]
	return t.values[k], k, true
}

// Sample returns the value at frame, linearly interpolated between the
// tightest pair of keyframes around it. Frames outside the keyed range clamp
// to the first or last keyframe. An empty table yields def.
func Sample[V Interpolator[V]](t *Table[V], frame int, def V) V {
	frames := t.Frames()
	if len(frames) == 0 {
		return def
	}

	first, last := frames[0], frames[len(frames)-1]
	if frame <= first {
		return t.values[first]
	}
	if frame >= last {
		return t.values[last]
	}

	// frames[i] is the first keyframe >= frame; there is always one before it.
	i := sort.SearchInts(frames, frame)
	next := frames[i]
	if next == frame {
		return t.values[next]
	}
	prev := frames[i-1]

	w := float32(frame-prev) / float32(next-prev)
	return t.values[prev].Lerp(t.values[next], w)
}
