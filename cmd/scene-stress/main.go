package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/kiln/components"
	"github.com/plus3/kiln/ecs"
	"github.com/rotisserie/eris"
)

var log = ecs.Logger("scene-stress")

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	frames := flag.Int64("frames", 0, "Stop after this many frames. 0 runs for the whole duration.")
	groups := flag.Int("groups", 500, "Number of spinning groups to generate.")
	fanout := flag.Int("fanout", 20, "Number of moving bodies per group.")
	seed := flag.Uint64("seed", 1, "Seed for the scene generator.")
	parallel := flag.Int("parallel", -1, "Override the maximum number of component calls in flight. -1 keeps the configured value.")
	profileMode := flag.String("profile", "", "Write a profile to the working directory: cpu, mem or block.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg, err := ecs.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *parallel >= 0 {
		cfg.MaxParallel = *parallel
	}
	ecs.SetLogLevel(cfg.LogLevel)

	if stop := startProfile(*profileMode); stop != nil {
		defer stop()
	}

	report, err := run(cfg, Layout{Groups: *groups, Fanout: *fanout, Seed: *seed}, *duration, *frames)
	if err != nil {
		log.Fatal().Err(err).Msg("stress test failed")
	}
	report.GCPauseMetrics = *gcPauseMetrics

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("failed to generate report")
	}
	fmt.Println("--- End of Report ---")
}

func startProfile(mode string) func() {
	var option func(*profile.Profile)
	switch mode {
	case "":
		return nil
	case "cpu":
		option = profile.CPUProfile
	case "mem":
		option = profile.MemProfileAllocs
	case "block":
		option = profile.BlockProfile
	default:
		log.Fatal().Str("profile", mode).Msg("unknown profile mode")
	}
	p := profile.Start(option, profile.ProfilePath("."), profile.NoShutdownHook, profile.Quiet)
	return p.Stop
}

// run loads a generated scene and steps it until the duration elapses or the
// frame limit is hit.
func run(cfg ecs.Config, layout Layout, duration time.Duration, frameLimit int64) (*Report, error) {
	registry := ecs.NewComponentRegistry()
	components.Register(registry)
	engine := ecs.NewEngine(cfg, registry)

	log.Info().Int("entities", layout.Entities()).Msg("populating scene")
	scene, err := engine.Load(context.Background(), Generate(layout))
	if err != nil {
		return nil, eris.Wrap(err, "failed to load generated scene")
	}
	log.Info().Msg("population complete")

	report := &Report{
		Duration:    duration,
		Groups:      layout.Groups,
		Fanout:      layout.Fanout,
		MaxParallel: cfg.MaxParallel,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0, 1024),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Info().Dur("duration", duration).Msg("running simulation")
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64

	for ctx.Err() == nil && (frameLimit == 0 || totalUpdates < frameLimit) {
		updateStart := time.Now()
		if err := engine.Scheduler.Step(ctx, updateStart); err != nil {
			if ctx.Err() != nil {
				break
			}
			return nil, eris.Wrapf(err, "frame %d failed", totalUpdates)
		}
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		totalUpdates++
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.UpdateTime.Finalize()
	report.Scene = scene.CollectStats()
	report.Scheduler = engine.Scheduler.GetStats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info().Int64("frames", totalUpdates).Msg("simulation finished")
	return report, nil
}
