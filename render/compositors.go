package render

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/kiln/ecs"
)

// Tint multiplies the camera image by a color.
type Tint struct {
	ecs.BaseComponent
	Color Color `json:"-"`
}

func (t *Tint) Create(ctx context.Context, desc ecs.Descriptor) error {
	var d struct {
		Color Color `yaml:"color"`
	}
	d.Color = Color{R: 255, G: 255, B: 255, A: 255}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	t.Color = d.Color
	return nil
}

func (t *Tint) Composite(dst, src *ebiten.Image) {
	opts := &ebiten.DrawImageOptions{}
	opts.ColorScale.ScaleWithColor(t.Color)
	dst.DrawImage(src, opts)
}

// Fade scales the camera image's alpha, moving linearly from one value to
// another over a duration in seconds.
type Fade struct {
	ecs.BaseComponent
	From     float64 `json:"from"`
	To       float64 `json:"to"`
	Duration float64 `json:"duration"`

	elapsed atomic.Uint64
}

func (f *Fade) Create(ctx context.Context, desc ecs.Descriptor) error {
	d := struct {
		From     float64 `yaml:"from"`
		To       float64 `yaml:"to"`
		Duration float64 `yaml:"duration"`
	}{From: 1, To: 1}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	f.From, f.To, f.Duration = d.From, d.To, d.Duration
	return nil
}

func (f *Fade) Update(frame *ecs.UpdateFrame) error {
	f.advance(frame.DeltaTime)
	return nil
}

func (f *Fade) advance(dt float64) {
	elapsed := math.Float64frombits(f.elapsed.Load()) + dt
	f.elapsed.Store(math.Float64bits(elapsed))
}

// Alpha returns the current alpha scale.
func (f *Fade) Alpha() float64 {
	if f.Duration <= 0 {
		return f.To
	}
	t := min(math.Float64frombits(f.elapsed.Load())/f.Duration, 1)
	return f.From + (f.To-f.From)*t
}

func (f *Fade) Composite(dst, src *ebiten.Image) {
	opts := &ebiten.DrawImageOptions{}
	opts.ColorScale.ScaleAlpha(float32(f.Alpha()))
	dst.DrawImage(src, opts)
}
