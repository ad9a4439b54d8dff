// Package registry binds scene objects to GPU vertex buffers.
//
// Slots are kept in a dense array that preserves creation order, which is
// the order they are drawn in. Callers never hold a position: they hold a
// Handle, and the registry tracks where each handle's slot currently lives.
// Deleting a slot shifts later slots down without invalidating their handles.
package registry

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/keyframe-studio/internal/engine/geometry"
	"github.com/Faultbox/keyframe-studio/internal/logger"
	"github.com/Faultbox/keyframe-studio/pkg/math"
)

// ErrStaleHandle is returned for handles whose slot has been deleted.
var ErrStaleHandle = errors.New("registry: stale or unknown handle")

// BufferID identifies a vertex buffer owned by a Backend.
type BufferID uint32

// Backend is the GPU side of the registry. Data is interleaved in
// geometry.FloatsPerVertex floats per vertex, triangle list topology.
type Backend interface {
	Upload(data []float32) (BufferID, error)
	Reupload(id BufferID, data []float32) error
	Free(id BufferID) error
	Draw(id BufferID, vertexCount int) error
}

// Material is the surface color of one slot.
type Material struct {
	Diffuse  math.Vec4
	Specular math.Vec4
}

// DefaultMaterial is assigned to new slots.
var DefaultMaterial = Material{
	Diffuse:  math.Vec4{1, 0.2, 0.2, 1},
	Specular: math.Vec4{1, 1, 1, 1},
}

// MaterialSetter is implemented by backends that shade per draw. When present
// it is called with the slot's material right before each Draw.
type MaterialSetter interface {
	SetMaterial(m Material)
}

// Handle refers to one slot. The zero Handle is never valid.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.generation == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("slot#%d.%d", h.index, h.generation)
}

type slot struct {
	owner    uint32 // index into entries
	buffer   BufferID
	count    int
	visible  bool
	material Material
}

type entry struct {
	generation uint32
	position   int // index into slots; -1 when free
}

// Registry owns the slot array. It is not safe for concurrent use.
type Registry struct {
	backend Backend
	slots   []slot
	entries []entry
	free    []uint32
	log     *zap.Logger
}

// New creates an empty registry on top of backend.
func New(backend Backend) *Registry {
	return &Registry{
		backend: backend,
		log:     logger.Named("registry"),
	}
}

// Create uploads vertices into a new buffer and appends a visible slot.
func (r *Registry) Create(vertices []geometry.Vertex) (Handle, error) {
	if len(vertices) == 0 {
		return Handle{}, geometry.ErrEmptyMesh
	}

	id, err := r.backend.Upload(geometry.Interleave(vertices))
	if err != nil {
		return Handle{}, fmt.Errorf("upload: %w", err)
	}

	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.entries))
		r.entries = append(r.entries, entry{})
	}

	e := &r.entries[idx]
	e.generation++
	e.position = len(r.slots)

	r.slots = append(r.slots, slot{
		owner:    idx,
		buffer:   id,
		count:    len(vertices),
		visible:  true,
		material: DefaultMaterial,
	})

	h := Handle{index: idx, generation: e.generation}
	r.log.Debug("slot created",
		zap.Stringer("handle", h),
		zap.Int("position", e.position),
		zap.Int("vertices", len(vertices)),
	)
	return h, nil
}

// Update re-uploads vertices into the slot's existing buffer. The slot keeps
// its position and visibility.
func (r *Registry) Update(h Handle, vertices []geometry.Vertex) error {
	s, err := r.lookup(h)
	if err != nil {
		return err
	}
	if len(vertices) == 0 {
		return geometry.ErrEmptyMesh
	}

	if err := r.backend.Reupload(s.buffer, geometry.Interleave(vertices)); err != nil {
		return fmt.Errorf("reupload %s: %w", h, err)
	}
	s.count = len(vertices)
	return nil
}

// Delete frees the slot's buffer and removes it. Later slots move down one
// position; their handles stay valid.
func (r *Registry) Delete(h Handle) error {
	s, err := r.lookup(h)
	if err != nil {
		return err
	}

	pos := r.entries[h.index].position
	freeErr := r.backend.Free(s.buffer)

	r.slots = append(r.slots[:pos], r.slots[pos+1:]...)
	for i := pos; i < len(r.slots); i++ {
		r.entries[r.slots[i].owner].position = i
	}

	r.entries[h.index].position = -1
	r.free = append(r.free, h.index)

	r.log.Debug("slot deleted", zap.Stringer("handle", h), zap.Int("position", pos))

	if freeErr != nil {
		return fmt.Errorf("free %s: %w", h, freeErr)
	}
	return nil
}

// SetVisible toggles whether DrawAll draws the slot.
func (r *Registry) SetVisible(h Handle, visible bool) error {
	s, err := r.lookup(h)
	if err != nil {
		return err
	}
	s.visible = visible
	return nil
}

// Visible reports the slot's visibility flag.
func (r *Registry) Visible(h Handle) (bool, error) {
	s, err := r.lookup(h)
	if err != nil {
		return false, err
	}
	return s.visible, nil
}

// SetMaterial replaces the slot's material.
func (r *Registry) SetMaterial(h Handle, m Material) error {
	s, err := r.lookup(h)
	if err != nil {
		return err
	}
	s.material = m
	return nil
}

// DrawAll draws visible slots in position order. It stops at the first
// backend error.
func (r *Registry) DrawAll() error {
	ms, _ := r.backend.(MaterialSetter)
	for i := range r.slots {
		s := &r.slots[i]
		if !s.visible {
			continue
		}
		if ms != nil {
			ms.SetMaterial(s.material)
		}
		if err := r.backend.Draw(s.buffer, s.count); err != nil {
			return fmt.Errorf("draw slot %d: %w", i, err)
		}
	}
	return nil
}

// Len returns the number of live slots.
func (r *Registry) Len() int {
	return len(r.slots)
}

// Index returns the slot's current position in draw order.
func (r *Registry) Index(h Handle) (int, error) {
	if _, err := r.lookup(h); err != nil {
		return -1, err
	}
	return r.entries[h.index].position, nil
}

// Valid reports whether h refers to a live slot.
func (r *Registry) Valid(h Handle) bool {
	_, err := r.lookup(h)
	return err == nil
}

// Buffer returns the backend buffer and vertex count behind h.
func (r *Registry) Buffer(h Handle) (BufferID, int, error) {
	s, err := r.lookup(h)
	if err != nil {
		return 0, 0, err
	}
	return s.buffer, s.count, nil
}

// Clear frees every slot. Outstanding handles become stale.
func (r *Registry) Clear() error {
	var err error
	for _, s := range r.slots {
		err = multierr.Append(err, r.backend.Free(s.buffer))
	}
	for i := range r.entries {
		if r.entries[i].position >= 0 {
			r.entries[i].position = -1
			r.free = append(r.free, uint32(i))
		}
	}
	r.slots = r.slots[:0]
	return err
}

func (r *Registry) lookup(h Handle) (*slot, error) {
	if h.IsZero() || int(h.index) >= len(r.entries) {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	e := r.entries[h.index]
	if e.generation != h.generation || e.position < 0 {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return &r.slots[e.position], nil
}
