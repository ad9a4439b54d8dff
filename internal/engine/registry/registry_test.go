package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/keyframe-studio/internal/engine/geometry"
	"github.com/Faultbox/keyframe-studio/pkg/math"
)

type drawCall struct {
	id       BufferID
	count    int
	material Material
}

// fakeBackend records buffer contents and draw calls in memory.
type fakeBackend struct {
	next     BufferID
	buffers  map[BufferID][]float32
	freed    []BufferID
	draws    []drawCall
	material Material

	failUpload error
	failFree   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{buffers: make(map[BufferID][]float32)}
}

func (f *fakeBackend) Upload(data []float32) (BufferID, error) {
	if f.failUpload != nil {
		return 0, f.failUpload
	}
	f.next++
	f.buffers[f.next] = append([]float32(nil), data...)
	return f.next, nil
}

func (f *fakeBackend) Reupload(id BufferID, data []float32) error {
	if _, ok := f.buffers[id]; !ok {
		return errors.New("unknown buffer")
	}
	f.buffers[id] = append([]float32(nil), data...)
	return nil
}

func (f *fakeBackend) Free(id BufferID) error {
	delete(f.buffers, id)
	f.freed = append(f.freed, id)
	return f.failFree
}

func (f *fakeBackend) Draw(id BufferID, count int) error {
	f.draws = append(f.draws, drawCall{id: id, count: count, material: f.material})
	return nil
}

func (f *fakeBackend) SetMaterial(m Material) {
	f.material = m
}

// mesh returns a one-triangle mesh tagged by x so buffers can be told apart.
func mesh(x float32) []geometry.Vertex {
	return []geometry.Vertex{
		{Position: math.Vec3{X: x}},
		{Position: math.Vec3{X: x, Y: 1}},
		{Position: math.Vec3{X: x, Z: 1}},
	}
}

func TestCreateAppends(t *testing.T) {
	be := newFakeBackend()
	r := New(be)

	var handles []Handle
	for i := 0; i < 3; i++ {
		h, err := r.Create(mesh(float32(i)))
		require.NoError(t, err)
		handles = append(handles, h)
	}

	assert.Equal(t, 3, r.Len())
	for i, h := range handles {
		idx, err := r.Index(h)
		require.NoError(t, err)
		assert.Equal(t, i, idx)
		vis, err := r.Visible(h)
		require.NoError(t, err)
		assert.True(t, vis)
	}
}

func TestCreateErrors(t *testing.T) {
	be := newFakeBackend()
	r := New(be)

	_, err := r.Create(nil)
	assert.ErrorIs(t, err, geometry.ErrEmptyMesh)

	boom := errors.New("out of memory")
	be.failUpload = boom
	_, err = r.Create(mesh(0))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, r.Len())
}

func TestUpdateKeepsPosition(t *testing.T) {
	be := newFakeBackend()
	r := New(be)

	a, _ := r.Create(mesh(0))
	b, _ := r.Create(mesh(1))

	require.NoError(t, r.Update(a, mesh(9)))

	idx, _ := r.Index(a)
	assert.Equal(t, 0, idx)
	id, count, err := r.Buffer(a)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, geometry.Interleave(mesh(9)), be.buffers[id])

	idx, _ = r.Index(b)
	assert.Equal(t, 1, idx)
}

func TestDeleteShiftsLaterSlots(t *testing.T) {
	for del := 0; del < 4; del++ {
		be := newFakeBackend()
		r := New(be)

		handles := make([]Handle, 4)
		buffers := make([]BufferID, 4)
		for i := range handles {
			h, err := r.Create(mesh(float32(i)))
			require.NoError(t, err)
			handles[i] = h
			buffers[i], _, _ = r.Buffer(h)
		}

		require.NoError(t, r.Delete(handles[del]))
		assert.Equal(t, 3, r.Len())
		assert.False(t, r.Valid(handles[del]))
		assert.Contains(t, be.freed, buffers[del])

		for j, h := range handles {
			if j == del {
				continue
			}
			idx, err := r.Index(h)
			require.NoError(t, err)
			want := j
			if j > del {
				want = j - 1
			}
			assert.Equal(t, want, idx, "delete %d: handle %d", del, j)

			// Still the same geometry.
			id, _, err := r.Buffer(h)
			require.NoError(t, err)
			assert.Equal(t, buffers[j], id)
			assert.Equal(t, geometry.Interleave(mesh(float32(j))), be.buffers[id])
		}
	}
}

func TestDeleteOutOfOrder(t *testing.T) {
	r := New(newFakeBackend())
	a, _ := r.Create(mesh(0))
	b, _ := r.Create(mesh(1))
	c, _ := r.Create(mesh(2))
	d, _ := r.Create(mesh(3))

	require.NoError(t, r.Delete(c))
	require.NoError(t, r.Delete(a))

	ib, _ := r.Index(b)
	id, _ := r.Index(d)
	assert.Equal(t, 0, ib)
	assert.Equal(t, 1, id)

	e, err := r.Create(mesh(4))
	require.NoError(t, err)
	ie, _ := r.Index(e)
	assert.Equal(t, 2, ie)
}

func TestStaleHandles(t *testing.T) {
	r := New(newFakeBackend())

	assert.ErrorIs(t, r.Update(Handle{}, mesh(0)), ErrStaleHandle)

	h, _ := r.Create(mesh(0))
	require.NoError(t, r.Delete(h))

	assert.ErrorIs(t, r.Delete(h), ErrStaleHandle)
	assert.ErrorIs(t, r.Update(h, mesh(1)), ErrStaleHandle)
	assert.ErrorIs(t, r.SetVisible(h, false), ErrStaleHandle)
	_, err := r.Index(h)
	assert.ErrorIs(t, err, ErrStaleHandle)

	// The freed entry is reused with a new generation; the old handle stays dead.
	h2, err := r.Create(mesh(1))
	require.NoError(t, err)
	assert.NotEqual(t, h, h2)
	assert.False(t, r.Valid(h))
	assert.True(t, r.Valid(h2))
}

func TestDeleteReportsFreeError(t *testing.T) {
	be := newFakeBackend()
	r := New(be)
	h, _ := r.Create(mesh(0))

	be.failFree = errors.New("driver lost")
	err := r.Delete(h)
	assert.ErrorIs(t, err, be.failFree)
	assert.Equal(t, 0, r.Len(), "slot is removed even when free fails")
}

func TestDrawAllSkipsInvisible(t *testing.T) {
	be := newFakeBackend()
	r := New(be)

	a, _ := r.Create(mesh(0))
	b, _ := r.Create(mesh(1))
	c, _ := r.Create(mesh(2))

	red := Material{Diffuse: math.Vec4{1, 0, 0, 1}, Specular: math.Vec4{1, 1, 1, 1}}
	require.NoError(t, r.SetMaterial(c, red))
	require.NoError(t, r.SetVisible(b, false))
	require.NoError(t, r.DrawAll())

	ida, _, _ := r.Buffer(a)
	idc, _, _ := r.Buffer(c)
	require.Len(t, be.draws, 2)
	assert.Equal(t, drawCall{id: ida, count: 3, material: DefaultMaterial}, be.draws[0])
	assert.Equal(t, drawCall{id: idc, count: 3, material: red}, be.draws[1])
}

func TestClear(t *testing.T) {
	be := newFakeBackend()
	r := New(be)
	a, _ := r.Create(mesh(0))
	r.Create(mesh(1))

	require.NoError(t, r.Clear())
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, be.buffers)
	assert.False(t, r.Valid(a))
}
