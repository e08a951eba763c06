// Command kiln loads a scene file and runs it in a window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/kiln/components"
	"github.com/plus3/kiln/ecs"
	"github.com/plus3/kiln/ecs/debugui"
	debugui_ebiten "github.com/plus3/kiln/ecs/debugui/ebiten"
	"github.com/plus3/kiln/render"
	"github.com/rotisserie/eris"
)

type options struct {
	scene    string
	camera   string
	debug    bool
	dump     bool
	list     bool
	tickRate float64
	parallel int
	logLevel string
}

func main() {
	cfg, err := ecs.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var opts options
	flag.StringVar(&opts.scene, "scene", cfg.ScenePath, "Scene description to load (YAML or JSON).")
	flag.StringVar(&opts.camera, "camera", "camera.Camera", "Reference to the camera shown in the window.")
	flag.BoolVar(&opts.debug, "debug", false, "Show the ImGui scene inspector.")
	flag.BoolVar(&opts.dump, "dump", false, "Print the scene as JSON after setup and exit.")
	flag.BoolVar(&opts.list, "list", false, "List the registered component types and exit.")
	flag.Float64Var(&opts.tickRate, "tick-rate", cfg.TickRate, "Frames per second.")
	flag.IntVar(&opts.parallel, "parallel", cfg.MaxParallel, "Maximum component calls in flight per pass, 0 for unbounded.")
	flag.StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "Log level.")
	flag.Parse()

	cfg.ScenePath = opts.scene
	cfg.TickRate = opts.tickRate
	cfg.MaxParallel = opts.parallel
	cfg.LogLevel = opts.logLevel
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	ecs.SetLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts); err != nil {
		ecs.Logger("kiln").Error().Msg(eris.ToString(err, true))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg ecs.Config, opts options) error {
	registry := ecs.NewComponentRegistry()
	components.Register(registry)
	render.Register(registry)
	engine := ecs.NewEngine(cfg, registry)
	debugui.Register(registry, engine.Scheduler)

	if opts.list {
		return listComponents(registry)
	}
	if cfg.ScenePath == "" {
		return eris.New("no scene given, use -scene or KILN_SCENE")
	}

	scene, err := engine.LoadFile(ctx, cfg.ScenePath)
	if err != nil {
		return err
	}

	if opts.dump {
		if err := scene.Refresh(ctx); err != nil {
			return err
		}
		data, err := scene.DumpJSON(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Println(string(data))
		return err
	}

	game, err := render.NewGame(ctx, engine, opts.camera)
	if err != nil {
		return err
	}

	if opts.debug {
		game.Overlay = debugui_ebiten.NewImguiBackend("kiln", cfg.WindowWidth, cfg.WindowHeight)
		if _, err := debugui.SpawnDebugUI(ctx, scene); err != nil {
			return err
		}
	}

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("kiln - " + cfg.ScenePath)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(int(cfg.TickRate))

	return ebiten.RunGame(game)
}

func listComponents(registry *ecs.ComponentRegistry) error {
	for _, tag := range registry.Tags() {
		caps, _ := registry.Capabilities(tag)
		goType, _ := registry.Type(tag)
		if _, err := fmt.Printf("%-14s %-16s %s\n", tag, caps, goType); err != nil {
			return err
		}
	}
	return nil
}
