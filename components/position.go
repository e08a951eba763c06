package components

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/plus3/kiln/ecs"
)

// Position holds an entity's local coordinates. Logic components of other entities
// may read it while its own entity's logic writes it, so all access goes through
// the methods.
type Position struct {
	ecs.BaseComponent

	mu    sync.RWMutex
	local [3]float64
}

// Create reads {x, y, z}; missing axes default to zero.
func (p *Position) Create(ctx context.Context, desc ecs.Descriptor) error {
	var v Vec3
	if err := desc.Decode(&v); err != nil {
		return err
	}
	p.Set(v.Array())
	return nil
}

// Local returns the current coordinates.
func (p *Position) Local() [3]float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.local
}

func (p *Position) Set(v [3]float64) {
	p.mu.Lock()
	p.local = v
	p.mu.Unlock()
}

// Translate adds v to the coordinates.
func (p *Position) Translate(v [3]float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.local {
		p.local[i] += v[i]
	}
}

// Clamp bounds every axis to its [min, max] range.
func (p *Position) Clamp(minX, maxX, minY, maxY, minZ, maxZ float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.local[0] = min(max(p.local[0], minX), maxX)
	p.local[1] = min(max(p.local[1], minY), maxY)
	p.local[2] = min(max(p.local[2], minZ), maxZ)
}

// ClampTo clamps to b.
func (p *Position) ClampTo(b Bounds) {
	p.Clamp(b.Min.X, b.Max.X, b.Min.Y, b.Max.Y, b.Min.Z, b.Max.Z)
}

// MarshalJSON exposes the coordinates in scene snapshots.
func (p *Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][3]float64{"local": p.Local()})
}
