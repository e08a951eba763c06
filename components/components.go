// Package components contains renderer-free components that move entities around
// the scene: a Position to hold the local transform and a few logic components
// that drive it.
package components

import "github.com/plus3/kiln/ecs"

const (
	PositionType = "Position"
	MotionType   = "Motion"
	FollowType   = "Follow"
	SpinType     = "Spin"
)

// Register adds every component of this package to registry.
func Register(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Position](registry, PositionType)
	ecs.RegisterComponent[Motion](registry, MotionType)
	ecs.RegisterComponent[Follow](registry, FollowType)
	ecs.RegisterComponent[Spin](registry, SpinType)
}

// Vec3 is an x, y, z triple as written in descriptors.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// Bounds is an axis aligned box used to clamp positions.
type Bounds struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}
