// Package registrytest provides an in-memory registry.Backend for tests.
package registrytest

import (
	"fmt"

	"github.com/Faultbox/keyframe-studio/internal/engine/registry"
)

// Draw is one recorded draw call.
type Draw struct {
	ID       registry.BufferID
	Count    int
	Material registry.Material
}

// Backend stores buffer contents in maps and records draws.
type Backend struct {
	Buffers map[registry.BufferID][]float32
	Draws   []Draw
	Freed   []registry.BufferID

	// Uploads counts buffer allocations.
	Uploads int

	next     registry.BufferID
	material registry.Material
}

// NewBackend returns an empty Backend.
func NewBackend() *Backend {
	return &Backend{Buffers: make(map[registry.BufferID][]float32)}
}

func (b *Backend) Upload(data []float32) (registry.BufferID, error) {
	b.next++
	b.Uploads++
	b.Buffers[b.next] = append([]float32(nil), data...)
	return b.next, nil
}

func (b *Backend) Reupload(id registry.BufferID, data []float32) error {
	if _, ok := b.Buffers[id]; !ok {
		return fmt.Errorf("unknown buffer %d", id)
	}
	b.Buffers[id] = append([]float32(nil), data...)
	return nil
}

func (b *Backend) Free(id registry.BufferID) error {
	if _, ok := b.Buffers[id]; !ok {
		return fmt.Errorf("unknown buffer %d", id)
	}
	delete(b.Buffers, id)
	b.Freed = append(b.Freed, id)
	return nil
}

func (b *Backend) Draw(id registry.BufferID, count int) error {
	b.Draws = append(b.Draws, Draw{ID: id, Count: count, Material: b.material})
	return nil
}

func (b *Backend) SetMaterial(m registry.Material) {
	b.material = m
}
