package scene

import (
	"github.com/google/uuid"

	"github.com/Faultbox/keyframe-studio/internal/engine/keyframe"
	"github.com/Faultbox/keyframe-studio/internal/engine/lighting"
)

// Light is a scene light. It is always drawn from its current fields; its
// keyframe table records snapshots but is never sampled.
type Light struct {
	ID      uuid.UUID
	Name    string
	Visible bool

	lighting.Light

	Keyframes keyframe.Table[lighting.Light]
}

// NewLight creates a visible light with the default colors and position.
func NewLight(name string) *Light {
	return &Light{
		ID:      uuid.New(),
		Name:    name,
		Visible: true,
		Light:   lighting.Default(),
	}
}

// Snapshot records the current fields as the keyframe at frame.
func (l *Light) Snapshot(frame int) {
	l.Keyframes.Set(frame, l.Light)
}
