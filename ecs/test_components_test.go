package ecs_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/plus3/kiln/ecs"
	"github.com/rotisserie/eris"
)

var errBoom = eris.New("boom")

// recorder collects events from concurrently running callbacks.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Value is a plain data component.
type Value struct {
	ecs.BaseComponent
	N int

	setups atomic.Int32
}

func (v *Value) Create(ctx context.Context, desc ecs.Descriptor) error {
	var d struct {
		N int `yaml:"n"`
	}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	v.N = d.N
	return nil
}

func (v *Value) Setup(ctx context.Context, desc ecs.Descriptor) error {
	v.setups.Add(1)
	return nil
}

// Ticker is a logic component that counts its updates.
type Ticker struct {
	ecs.BaseComponent
	rec     *recorder
	updates atomic.Int32
}

func (t *Ticker) Update(frame *ecs.UpdateFrame) error {
	t.updates.Add(1)
	if t.rec != nil {
		t.rec.record("update:%s", t.Entity().Name())
	}
	return nil
}

// Linker references another Linker and resolves it during setup.
type Linker struct {
	ecs.BaseComponent
	Other ecs.Ref[*Linker]

	peer        *Linker
	peerCreated bool
}

func (l *Linker) Create(ctx context.Context, desc ecs.Descriptor) error {
	var d struct {
		Other ecs.Ref[*Linker] `yaml:"other"`
	}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	l.Other = d.Other
	return nil
}

func (l *Linker) Setup(ctx context.Context, desc ecs.Descriptor) error {
	peer, err := l.Other.Resolve(l.Scene())
	if err != nil {
		return err
	}
	l.peer = peer
	l.peerCreated = peer.State() != ecs.StateConstructed
	return nil
}

// Spawner creates a child carrying another Spawner during its own setup until
// depth reaches zero.
type Spawner struct {
	ecs.BaseComponent
	Depth int
}

func (s *Spawner) Create(ctx context.Context, desc ecs.Descriptor) error {
	var d struct {
		Depth int `yaml:"depth"`
	}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	s.Depth = d.Depth
	return nil
}

func (s *Spawner) Setup(ctx context.Context, desc ecs.Descriptor) error {
	if s.Depth <= 0 {
		return nil
	}
	node := ecs.NodeDesc{Components: []ecs.ComponentDesc{{
		Type:       "Spawner",
		Descriptor: ecs.MustDescriptor(map[string]int{"depth": s.Depth - 1}),
	}}}
	_, err := s.Scene().CreateChild(ctx, node, fmt.Sprintf("gen%d", s.Depth-1), s.Entity())
	return err
}

// Failing fails in the phase named by its descriptor.
type Failing struct {
	ecs.BaseComponent
	phase string
}

func (f *Failing) Create(ctx context.Context, desc ecs.Descriptor) error {
	var d struct {
		Phase string `yaml:"phase"`
	}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	f.phase = d.Phase
	if f.phase == "create" {
		return errBoom
	}
	return nil
}

func (f *Failing) Setup(ctx context.Context, desc ecs.Descriptor) error {
	if f.phase == "setup" {
		return errBoom
	}
	return nil
}

func (f *Failing) Update(frame *ecs.UpdateFrame) error {
	if f.phase == "update" {
		return errBoom
	}
	return nil
}

// Gate blocks a "wait" update until a "release" update of the same frame ran.
type Gate struct {
	ecs.BaseComponent
	role    string
	release chan struct{}
	once    *sync.Once
}

func (g *Gate) Create(ctx context.Context, desc ecs.Descriptor) error {
	var d struct {
		Role string `yaml:"role"`
	}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	g.role = d.Role
	return nil
}

func (g *Gate) Update(frame *ecs.UpdateFrame) error {
	switch g.role {
	case "release":
		g.once.Do(func() { close(g.release) })
		return nil
	case "wait":
		select {
		case <-g.release:
			return nil
		case <-frame.Context().Done():
			return frame.Context().Err()
		case <-time.After(2 * time.Second):
			return eris.New("wait update was never released")
		}
	}
	return nil
}

// Painter is a display component.
type Painter struct {
	ecs.BaseComponent
	rec *recorder
}

func (p *Painter) Display(frame *ecs.UpdateFrame) error {
	p.rec.record("display:%s", p.Entity().Name())
	return nil
}

// Curtain is a display component that deactivates the entity named by target.
type Curtain struct {
	ecs.BaseComponent
	target string
}

func (c *Curtain) Create(ctx context.Context, desc ecs.Descriptor) error {
	var d struct {
		Target string `yaml:"target"`
	}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	c.target = d.Target
	return nil
}

func (c *Curtain) Display(frame *ecs.UpdateFrame) error {
	if e := c.Scene().FindObject(c.target); e != nil {
		e.SetActive(false)
	}
	return nil
}

// Lens is a camera component.
type Lens struct {
	ecs.BaseComponent
	rec *recorder
}

func (l *Lens) Render(frame *ecs.UpdateFrame) error {
	l.rec.record("render:%s", l.Entity().Name())
	return nil
}

// Hooked counts enable transitions.
type Hooked struct {
	ecs.BaseComponent
	enabled  int
	disabled int
}

func (h *Hooked) OnEnabled()  { h.enabled++ }
func (h *Hooked) OnDisabled() { h.disabled++ }

// newTestRegistry registers every test component. Components that report to rec
// are bound to it.
func newTestRegistry(rec *recorder) *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Value](registry, "Value")
	ecs.RegisterComponent[Linker](registry, "Linker")
	ecs.RegisterComponent[Spawner](registry, "Spawner")
	ecs.RegisterComponent[Failing](registry, "Failing")
	ecs.RegisterComponent[Hooked](registry, "Hooked")
	ecs.RegisterComponent[Curtain](registry, "Curtain")
	ecs.RegisterComponentFunc[Ticker](registry, "Ticker", func() *Ticker { return &Ticker{rec: rec} })
	ecs.RegisterComponentFunc[Painter](registry, "Painter", func() *Painter { return &Painter{rec: rec} })
	ecs.RegisterComponentFunc[Lens](registry, "Lens", func() *Lens { return &Lens{rec: rec} })

	release := make(chan struct{})
	once := &sync.Once{}
	ecs.RegisterComponentFunc[Gate](registry, "Gate", func() *Gate {
		return &Gate{release: release, once: once}
	})
	return registry
}

// loadScene parses a YAML description and creates it in a fresh scene.
func loadScene(registry *ecs.ComponentRegistry, src string, opts ...ecs.SceneOption) (*ecs.Scene, error) {
	desc, err := ecs.ParseDescription([]byte(src))
	if err != nil {
		return nil, err
	}
	scene := ecs.NewScene(registry, opts...)
	if err := scene.Create(context.Background(), desc); err != nil {
		return nil, err
	}
	return scene, nil
}
