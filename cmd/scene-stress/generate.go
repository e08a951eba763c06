package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/plus3/kiln/components"
	"github.com/plus3/kiln/ecs"
)

const worldExtent = 100.0

// Layout controls the shape of a generated scene.
type Layout struct {
	Groups int
	Fanout int
	Seed   uint64
}

// Entities returns the number of entities Generate produces, the root excluded.
func (l Layout) Entities() int {
	return l.Groups * (l.Fanout + 2)
}

// Generate builds a scene of spinning groups. Each group holds fanout bouncing
// bodies and one follower that trails the group's first body.
func Generate(l Layout) ecs.Description {
	rng := rand.New(rand.NewPCG(l.Seed, l.Seed^0x9e3779b97f4a7c15))
	bounds := map[string]any{
		"min": vec(-worldExtent, -worldExtent, -worldExtent),
		"max": vec(worldExtent, worldExtent, worldExtent),
	}

	desc := make(ecs.Description, 0, l.Groups)
	for i := range l.Groups {
		group := ecs.NodeDesc{
			Components: []ecs.ComponentDesc{
				component(components.PositionType, vec(0, 0, 0)),
				component(components.SpinType, map[string]any{"rate": rng.Float64() * 6}),
			},
		}

		for j := range l.Fanout {
			body := ecs.NodeDesc{
				Components: []ecs.ComponentDesc{
					component(components.PositionType, randomVec(rng, worldExtent)),
					component(components.MotionType, map[string]any{
						"velocity": randomVec(rng, 20),
						"bounds":   bounds,
					}),
				},
			}
			group.Children = append(group.Children, ecs.NamedNode{Name: bodyName(i, j), Node: body})
		}

		if l.Fanout > 0 {
			follower := ecs.NodeDesc{
				Components: []ecs.ComponentDesc{
					component(components.PositionType, vec(0, 0, 0)),
					component(components.FollowType, map[string]any{
						"target": bodyName(i, 0) + "." + components.PositionType,
						"offset": vec(1, 1, 0),
					}),
				},
			}
			group.Children = append(group.Children, ecs.NamedNode{Name: fmt.Sprintf("follower%d", i), Node: follower})
		} else {
			group.Children = append(group.Children, ecs.NamedNode{Name: fmt.Sprintf("marker%d", i)})
		}

		desc = append(desc, ecs.NamedNode{Name: fmt.Sprintf("group%d", i), Node: group})
	}
	return desc
}

func bodyName(group, index int) string {
	return fmt.Sprintf("body%d_%d", group, index)
}

func component(tag string, v any) ecs.ComponentDesc {
	return ecs.ComponentDesc{Type: tag, Descriptor: ecs.MustDescriptor(v)}
}

func vec(x, y, z float64) map[string]any {
	return map[string]any{"x": x, "y": y, "z": z}
}

func randomVec(rng *rand.Rand, extent float64) map[string]any {
	return vec((rng.Float64()*2-1)*extent, (rng.Float64()*2-1)*extent, (rng.Float64()*2-1)*extent)
}
