package render

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/kiln/ecs"
	"github.com/rs/zerolog"
)

// Overlay is drawn on top of the scene, typically a debug UI. BeginFrame and
// EndFrame bracket the frame's systems so overlay widgets can be issued from them.
type Overlay interface {
	BeginFrame()
	EndFrame()
	Draw(screen *ebiten.Image)
	Layout(width, height int)
}

// Game drives an engine from ebiten's loop: every Update steps one frame, every
// Draw scales the output of the screen camera into the window.
type Game struct {
	Engine  *ecs.Engine
	Overlay Overlay

	ctx        context.Context
	cameraPath string
	camera     *Camera
	cameraFrom *ecs.Scene
	log        zerolog.Logger
}

// NewGame creates a game showing the camera at cameraPath, an "entity.Camera"
// reference into the current scene. The game terminates when ctx is cancelled.
func NewGame(ctx context.Context, engine *ecs.Engine, cameraPath string) (*Game, error) {
	if _, err := ecs.ParseRef[*Camera](cameraPath); err != nil {
		return nil, err
	}
	return &Game{
		Engine:     engine,
		ctx:        ctx,
		cameraPath: cameraPath,
		log:        ecs.Logger("game"),
	}, nil
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	if g.Overlay != nil {
		g.Overlay.BeginFrame()
	}
	err := g.Engine.Scheduler.Step(g.ctx, time.Now())
	if g.Overlay != nil {
		g.Overlay.EndFrame()
	}

	if err != nil {
		g.log.Error().Err(err).Uint64("frame", g.Engine.Scheduler.Frame()-1).Msg("frame failed")
	}
	return err
}

// screenCamera looks the camera up again whenever the stage swapped scenes.
func (g *Game) screenCamera() *Camera {
	scene := g.Engine.Stage.Current()
	if scene == nil {
		return nil
	}
	if scene == g.cameraFrom {
		return g.camera
	}

	g.cameraFrom = scene
	g.camera = nil
	ref, _ := ecs.ParseRef[*Camera](g.cameraPath)
	camera, err := ref.Resolve(scene)
	if err != nil {
		g.log.Warn().Err(err).Str("camera", g.cameraPath).Msg("screen camera not found")
		return nil
	}
	g.camera = camera
	return camera
}

func (g *Game) Draw(screen *ebiten.Image) {
	if camera := g.screenCamera(); camera != nil {
		if out := camera.Output(); out != nil {
			sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
			scale := min(float64(sw)/float64(camera.Width), float64(sh)/float64(camera.Height))

			opts := &ebiten.DrawImageOptions{}
			opts.GeoM.Scale(scale, scale)
			opts.GeoM.Translate((float64(sw)-float64(camera.Width)*scale)/2, (float64(sh)-float64(camera.Height)*scale)/2)
			opts.Filter = ebiten.FilterNearest
			screen.DrawImage(out, opts)
		}
	}

	if g.Overlay != nil {
		g.Overlay.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.Overlay != nil {
		g.Overlay.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
