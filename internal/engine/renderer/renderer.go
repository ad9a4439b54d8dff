// Package renderer draws registry slots with OpenGL into an offscreen target
// that can be shown in the window and read back for export.
package renderer

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/keyframe-studio/internal/engine/framebuffer"
	"github.com/Faultbox/keyframe-studio/internal/engine/geometry"
	"github.com/Faultbox/keyframe-studio/internal/engine/lighting"
	"github.com/Faultbox/keyframe-studio/internal/engine/registry"
	"github.com/Faultbox/keyframe-studio/internal/engine/renderer/shaders"
	"github.com/Faultbox/keyframe-studio/internal/engine/shader"
	"github.com/Faultbox/keyframe-studio/internal/logger"
	"github.com/Faultbox/keyframe-studio/pkg/math"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Shininess is the Phong specular exponent.
const Shininess = 32.0

// ErrUnknownBuffer is returned for buffer IDs this renderer never issued.
var ErrUnknownBuffer = errors.New("renderer: unknown buffer")

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Background [3]float32
}

// View is the per-frame camera and lighting state.
type View struct {
	ViewMatrix       math.Mat4
	ProjectionMatrix math.Mat4
	Eye              math.Vec3
	Lights           *lighting.Buffer
}

type buffer struct {
	vao uint32
	vbo uint32
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	program *shader.Program
	target  *framebuffer.Framebuffer

	buffers map[registry.BufferID]*buffer
	nextID  registry.BufferID

	log *zap.Logger
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:  cfg,
		buffers: make(map[registry.BufferID]*buffer),
		log:     logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	var err error
	r.program, err = shader.NewProgram(shaders.PhongVertexShader, shaders.PhongFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.target, err = framebuffer.New(int32(cfg.Width), int32(cfg.Height))
	if err != nil {
		r.program.Delete()
		return nil, err
	}

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("buffers", len(r.buffers)))
	for id := range r.buffers {
		_ = r.Free(id)
	}
	if r.target != nil {
		r.target.Destroy()
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize. The offscreen target follows the window.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	r.target.Resize(int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the offscreen target size.
func (r *Renderer) Size() (width, height int) {
	return r.config.Width, r.config.Height
}

// SetBackground changes the clear color.
func (r *Renderer) SetBackground(rgb [3]float32) {
	r.config.Background = rgb
}

// Begin binds the offscreen target, clears it and uploads the per-frame
// uniforms.
func (r *Renderer) Begin(v View) {
	r.target.Bind()
	r.target.Clear(r.config.Background)

	r.program.Use()
	r.program.SetMat4("uView", v.ViewMatrix)
	r.program.SetMat4("uProjection", v.ProjectionMatrix)
	r.program.SetVec3("uViewPos", v.Eye.X, v.Eye.Y, v.Eye.Z)
	r.program.SetFloat("uShininess", Shininess)

	lights := v.Lights
	if lights == nil {
		lights = lighting.NewBuffer()
	}
	r.program.SetInt("uNumLights", lights.Count())
	r.program.SetVec3Array("uLightPosition", lights.Positions())
	r.program.SetVec3Array("uLightAmbient", lights.Ambients())
	r.program.SetVec3Array("uLightDiffuse", lights.Diffuses())
	r.program.SetVec3Array("uLightSpecular", lights.Speculars())

	r.SetMaterial(registry.DefaultMaterial)
}

// End finishes the frame and copies the offscreen target to the window.
func (r *Renderer) End(windowWidth, windowHeight int) {
	gl.BindVertexArray(0)
	r.target.Unbind()
	r.target.BlitToScreen(int32(windowWidth), int32(windowHeight))
}

// Finish blocks until every queued GL command has completed.
func (r *Renderer) Finish() {
	gl.Finish()
}

// Capture reads back the last composed frame.
func (r *Renderer) Capture() (*image.RGBA, error) {
	img := r.target.Capture()
	if code := gl.GetError(); code != gl.NO_ERROR {
		return nil, fmt.Errorf("read pixels: GL error 0x%x", code)
	}
	return img, nil
}

// Upload allocates a VAO/VBO pair for interleaved position+normal data.
func (r *Renderer) Upload(data []float32) (registry.BufferID, error) {
	if len(data) == 0 || len(data)%geometry.FloatsPerVertex != 0 {
		return 0, fmt.Errorf("%w: %d floats", geometry.ErrBadBufferLen, len(data))
	}

	b := &buffer{}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.DYNAMIC_DRAW)

	stride := int32(geometry.FloatsPerVertex * 4)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)

	// Normal attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	r.nextID++
	r.buffers[r.nextID] = b

	r.log.Debug("buffer uploaded",
		zap.Uint32("vao", b.vao),
		zap.Uint32("vbo", b.vbo),
		zap.Int("vertices", len(data)/geometry.FloatsPerVertex),
	)
	return r.nextID, nil
}

// Reupload replaces the contents of an existing buffer.
func (r *Renderer) Reupload(id registry.BufferID, data []float32) error {
	b, ok := r.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBuffer, id)
	}
	if len(data) == 0 || len(data)%geometry.FloatsPerVertex != 0 {
		return fmt.Errorf("%w: %d floats", geometry.ErrBadBufferLen, len(data))
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// Free deletes a buffer.
func (r *Renderer) Free(id registry.BufferID) error {
	b, ok := r.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBuffer, id)
	}
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteVertexArrays(1, &b.vao)
	delete(r.buffers, id)
	return nil
}

// Draw issues one triangle-list draw call.
func (r *Renderer) Draw(id registry.BufferID, vertexCount int) error {
	b, ok := r.buffers[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBuffer, id)
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(vertexCount))
	return nil
}

// SetMaterial uploads the surface colors for the next Draw.
func (r *Renderer) SetMaterial(m registry.Material) {
	r.program.SetVec4("uMaterialDiffuse", m.Diffuse)
	r.program.SetVec4("uMaterialSpecular", m.Specular)
}

var (
	_ registry.Backend        = (*Renderer)(nil)
	_ registry.MaterialSetter = (*Renderer)(nil)
)
