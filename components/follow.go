package components

import (
	"context"

	"github.com/plus3/kiln/ecs"
	"github.com/rotisserie/eris"
)

// Follow keeps the sibling Position at a fixed offset from another entity's
// Position. The target is read while it may be moving in the same frame, so the
// follower can lag one frame behind.
type Follow struct {
	ecs.BaseComponent
	Target ecs.Ref[*Position] `json:"target"`
	Offset Vec3               `json:"offset"`

	position *Position
}

type followDesc struct {
	Target ecs.Ref[*Position] `yaml:"target"`
	Offset Vec3               `yaml:"offset"`
}

func (f *Follow) Create(ctx context.Context, desc ecs.Descriptor) error {
	var d followDesc
	if err := desc.Decode(&d); err != nil {
		return err
	}
	if d.Target.IsZero() {
		return eris.Wrap(ecs.ErrBadReference, "follow needs a target")
	}
	f.Target = d.Target
	f.Offset = d.Offset
	return nil
}

func (f *Follow) Setup(ctx context.Context, desc ecs.Descriptor) error {
	if _, err := f.Target.Resolve(f.Scene()); err != nil {
		return err
	}
	pos, ok := ecs.GetComponent[*Position](f.Entity(), PositionType)
	if !ok {
		return eris.Errorf("follow on %s needs a sibling Position", f.Entity().Path())
	}
	f.position = pos
	return nil
}

func (f *Follow) Update(frame *ecs.UpdateFrame) error {
	target := f.Target.Get().Local()
	f.position.Set([3]float64{target[0] + f.Offset.X, target[1] + f.Offset.Y, target[2] + f.Offset.Z})
	return nil
}
