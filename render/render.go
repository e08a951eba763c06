// Package render draws scenes with ebiten. Cameras own offscreen targets that
// display components queue draws into; each frame a camera replays its queue by
// layer and runs its compositor chain.
package render

import (
	"github.com/plus3/kiln/ecs"
)

const (
	CameraType = "Camera"
	SpriteType = "Sprite"
	TintType   = "Tint"
	FadeType   = "Fade"
)

// Register adds every component of this package to registry. Sprites depend on
// components.Position, so the components package must be registered as well.
func Register(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Camera](registry, CameraType)
	ecs.RegisterComponent[Sprite](registry, SpriteType)
	ecs.RegisterComponent[Tint](registry, TintType)
	ecs.RegisterComponent[Fade](registry, FadeType)
}
