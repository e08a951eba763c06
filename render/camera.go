package render

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/kiln/ecs"
	"github.com/rotisserie/eris"
)

// DrawFunc draws onto a camera target.
type DrawFunc func(dst *ebiten.Image)

// Compositor post-processes a camera image. dst is cleared before the call.
type Compositor interface {
	ecs.Component
	Composite(dst, src *ebiten.Image)
}

type queuedDraw struct {
	layer int
	draw  DrawFunc
}

// Camera renders the draws queued during the display pass into an offscreen
// target, lowest layer first, then runs its compositors in order.
type Camera struct {
	ecs.BaseComponent
	Width       int                   `json:"width"`
	Height      int                   `json:"height"`
	Clear       Color                 `json:"-"`
	Compositors []ecs.Ref[Compositor] `json:"compositors,omitempty"`

	mu    sync.Mutex
	queue []queuedDraw

	buffers [2]*ebiten.Image
	target  *ebiten.Image
	output  atomic.Pointer[ebiten.Image]
}

type cameraDesc struct {
	Width       int                   `yaml:"width"`
	Height      int                   `yaml:"height"`
	Clear       Color                 `yaml:"clear"`
	Compositors []ecs.Ref[Compositor] `yaml:"compositors"`
}

func (c *Camera) Create(ctx context.Context, desc ecs.Descriptor) error {
	d := cameraDesc{Width: 320, Height: 240, Clear: Color{A: 255}}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	if d.Width <= 0 || d.Height <= 0 {
		return eris.Errorf("camera size must be positive, got %dx%d", d.Width, d.Height)
	}

	c.Width, c.Height = d.Width, d.Height
	c.Clear = d.Clear
	c.Compositors = d.Compositors
	c.target = ebiten.NewImage(c.Width, c.Height)
	c.buffers[0] = ebiten.NewImage(c.Width, c.Height)
	c.buffers[1] = ebiten.NewImage(c.Width, c.Height)
	return nil
}

func (c *Camera) Setup(ctx context.Context, desc ecs.Descriptor) error {
	for i := range c.Compositors {
		if _, err := c.Compositors[i].Resolve(c.Scene()); err != nil {
			return eris.Wrapf(err, "camera on %s", c.Entity().Path())
		}
	}
	return nil
}

// Queue schedules draw for the next Render. Safe for concurrent use by display
// components.
func (c *Camera) Queue(layer int, draw DrawFunc) {
	c.mu.Lock()
	c.queue = append(c.queue, queuedDraw{layer: layer, draw: draw})
	c.mu.Unlock()
}

// Pending returns the number of queued draws.
func (c *Camera) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *Camera) Render(frame *ecs.UpdateFrame) error {
	c.mu.Lock()
	queue := c.queue
	c.queue = nil
	c.mu.Unlock()

	sort.SliceStable(queue, func(i, j int) bool { return queue[i].layer < queue[j].layer })

	c.target.Fill(c.Clear)
	for _, q := range queue {
		q.draw(c.target)
	}

	src := c.target
	applied := 0
	for i := range c.Compositors {
		comp := c.Compositors[i].Get()
		if !comp.Base().Enabled() {
			continue
		}
		dst := c.buffers[applied%2]
		dst.Clear()
		comp.Composite(dst, src)
		src = dst
		applied++
	}
	c.output.Store(src)
	return nil
}

// Output returns the image of the last Render, or nil before the first one.
func (c *Camera) Output() *ebiten.Image {
	return c.output.Load()
}

func (c *Camera) OnDisabled() {
	c.mu.Lock()
	c.queue = nil
	c.mu.Unlock()
}
