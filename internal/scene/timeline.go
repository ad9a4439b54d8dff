package scene

import (
	"errors"
	"fmt"
	"slices"
)

// ErrFrameOutOfRange is returned for frames outside the timeline bounds.
var ErrFrameOutOfRange = errors.New("frame out of timeline range")

// Timeline is the bounded frame axis and the set of frames marked as scene
// keyframes on it.
type Timeline struct {
	min, max int
	marked   map[int]struct{}
}

// NewTimeline creates an empty timeline over [min, max].
func NewTimeline(min, max int) *Timeline {
	return &Timeline{min: min, max: max, marked: make(map[int]struct{})}
}

// Bounds returns the first and last frame of the axis.
func (t *Timeline) Bounds() (min, max int) {
	return t.min, t.max
}

// InRange reports whether frame lies on the axis.
func (t *Timeline) InRange(frame int) bool {
	return frame >= t.min && frame <= t.max
}

// CheckRange returns ErrFrameOutOfRange for frames off the axis.
func (t *Timeline) CheckRange(frame int) error {
	if !t.InRange(frame) {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrFrameOutOfRange, frame, t.min, t.max)
	}
	return nil
}

// Mark adds frame to the keyframe set. It reports whether the frame was new.
func (t *Timeline) Mark(frame int) (bool, error) {
	if err := t.CheckRange(frame); err != nil {
		return false, err
	}
	if _, ok := t.marked[frame]; ok {
		return false, nil
	}
	t.marked[frame] = struct{}{}
	return true, nil
}

// Unmark removes frame. It reports whether the frame was marked.
func (t *Timeline) Unmark(frame int) bool {
	if _, ok := t.marked[frame]; !ok {
		return false
	}
	delete(t.marked, frame)
	return true
}

// Contains reports whether frame is marked.
func (t *Timeline) Contains(frame int) bool {
	_, ok := t.marked[frame]
	return ok
}

// Frames returns the marked frames in ascending order.
func (t *Timeline) Frames() []int {
	out := make([]int, 0, len(t.marked))
	for f := range t.marked {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of marked frames.
func (t *Timeline) Len() int {
	return len(t.marked)
}

// Clear unmarks every frame.
func (t *Timeline) Clear() {
	clear(t.marked)
}
