package components

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/plus3/kiln/ecs"
)

// Spin accumulates a rotation angle in radians, wrapped to [0, 2π).
type Spin struct {
	ecs.BaseComponent
	Rate float64 `json:"rate"`

	angle atomic.Uint64
}

func (s *Spin) Create(ctx context.Context, desc ecs.Descriptor) error {
	var d struct {
		Rate  float64 `yaml:"rate"`
		Angle float64 `yaml:"angle"`
	}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	s.Rate = d.Rate
	s.setAngle(d.Angle)
	return nil
}

func (s *Spin) Update(frame *ecs.UpdateFrame) error {
	s.setAngle(s.Angle() + s.Rate*frame.DeltaTime)
	return nil
}

// Angle returns the current rotation.
func (s *Spin) Angle() float64 {
	return math.Float64frombits(s.angle.Load())
}

func (s *Spin) setAngle(a float64) {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	s.angle.Store(math.Float64bits(a))
}
