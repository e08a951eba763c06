package render

import (
	"context"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/kiln/components"
	"github.com/plus3/kiln/ecs"
	"github.com/rotisserie/eris"
)

var (
	pixelOnce sync.Once
	pixel     *ebiten.Image
)

func whitePixel() *ebiten.Image {
	pixelOnce.Do(func() {
		pixel = ebiten.NewImage(1, 1)
		pixel.Fill(color.White)
	})
	return pixel
}

// Sprite draws a filled rectangle centered on the sibling Position. When the entity
// also carries a Spin the rectangle is rotated by its angle.
type Sprite struct {
	ecs.BaseComponent
	Camera ecs.Ref[*Camera] `json:"camera"`
	Width  float32          `json:"width"`
	Height float32          `json:"height"`
	Color  Color            `json:"-"`
	Layer  int              `json:"layer"`

	position *components.Position
	spin     *components.Spin
}

type spriteDesc struct {
	Camera ecs.Ref[*Camera] `yaml:"camera"`
	Size   [2]float32       `yaml:"size"`
	Color  Color            `yaml:"color"`
	Layer  int              `yaml:"layer"`
}

func (s *Sprite) Create(ctx context.Context, desc ecs.Descriptor) error {
	d := spriteDesc{Size: [2]float32{8, 8}, Color: Color{R: 255, G: 255, B: 255, A: 255}}
	if err := desc.Decode(&d); err != nil {
		return err
	}
	if d.Camera.IsZero() {
		return eris.Wrap(ecs.ErrBadReference, "sprite needs a camera")
	}
	s.Camera = d.Camera
	s.Width, s.Height = d.Size[0], d.Size[1]
	s.Color = d.Color
	s.Layer = d.Layer
	return nil
}

func (s *Sprite) Setup(ctx context.Context, desc ecs.Descriptor) error {
	if _, err := s.Camera.Resolve(s.Scene()); err != nil {
		return err
	}
	pos, ok := ecs.GetComponent[*components.Position](s.Entity(), components.PositionType)
	if !ok {
		return eris.Errorf("sprite on %s needs a sibling Position", s.Entity().Path())
	}
	s.position = pos
	s.spin, _ = ecs.GetComponent[*components.Spin](s.Entity(), components.SpinType)
	return nil
}

func (s *Sprite) Display(frame *ecs.UpdateFrame) error {
	p := s.position.Local()
	x, y := float32(p[0]), float32(p[1])
	w, h := s.Width, s.Height
	clr := s.Color

	if s.spin == nil || s.spin.Angle() == 0 {
		s.Camera.Get().Queue(s.Layer, func(dst *ebiten.Image) {
			vector.DrawFilledRect(dst, x-w/2, y-h/2, w, h, clr, false)
		})
		return nil
	}

	angle := s.spin.Angle()
	s.Camera.Get().Queue(s.Layer, func(dst *ebiten.Image) {
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Scale(float64(w), float64(h))
		opts.GeoM.Translate(-float64(w)/2, -float64(h)/2)
		opts.GeoM.Rotate(angle)
		opts.GeoM.Translate(float64(x), float64(y))
		opts.ColorScale.ScaleWithColor(clr)
		dst.DrawImage(whitePixel(), opts)
	})
	return nil
}
