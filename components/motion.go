package components

import (
	"context"

	"github.com/plus3/kiln/ecs"
	"github.com/rotisserie/eris"
)

// Motion moves the sibling Position by a constant velocity in units per second,
// optionally clamped to bounds.
type Motion struct {
	ecs.BaseComponent
	Velocity Vec3    `json:"velocity"`
	Bounds   *Bounds `json:"bounds,omitempty"`

	position *Position
}

type motionDesc struct {
	Velocity Vec3    `yaml:"velocity"`
	Bounds   *Bounds `yaml:"bounds"`
}

func (m *Motion) Create(ctx context.Context, desc ecs.Descriptor) error {
	var d motionDesc
	if err := desc.Decode(&d); err != nil {
		return err
	}
	m.Velocity = d.Velocity
	m.Bounds = d.Bounds
	return nil
}

func (m *Motion) Setup(ctx context.Context, desc ecs.Descriptor) error {
	pos, ok := ecs.GetComponent[*Position](m.Entity(), PositionType)
	if !ok {
		return eris.Errorf("motion on %s needs a sibling Position", m.Entity().Path())
	}
	m.position = pos
	return nil
}

func (m *Motion) Update(frame *ecs.UpdateFrame) error {
	dt := frame.DeltaTime
	m.position.Translate([3]float64{m.Velocity.X * dt, m.Velocity.Y * dt, m.Velocity.Z * dt})
	if m.Bounds != nil {
		m.position.ClampTo(*m.Bounds)
	}
	return nil
}
