package ecs

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          uint64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	FailureCount   int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	failureCount   int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// SceneProvider hands the Scheduler the scene to run each frame.
type SceneProvider interface {
	Current() *Scene
}

// Scheduler executes systems in registration order, once per frame.
type Scheduler struct {
	scenes      SceneProvider
	maxDelta    time.Duration
	systems     []System
	systemStats []*systemStatsInternal

	frame    uint64
	lastStep time.Time
	log      zerolog.Logger
}

// NewScheduler creates a scheduler that runs against whatever scene scenes holds.
// scenes may be nil, in which case systems see no scene.
// Delta times computed by Step are clamped to cfg.MaxDelta.
func NewScheduler(scenes SceneProvider, cfg Config) *Scheduler {
	return &Scheduler{
		scenes:   scenes,
		maxDelta: cfg.MaxDelta,
		systems:  make([]System, 0),
		log:      Logger("scheduler"),
	}
}

// Register adds a system to the scheduler and initializes its Query fields. The
// system is named after its type.
func (s *Scheduler) Register(system System) {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	s.register(systemType.Name(), system)
}

// RegisterFunc adds a function as a named system.
func (s *Scheduler) RegisterFunc(name string, fn func(frame *UpdateFrame) error) {
	s.register(name, SystemFunc(fn))
}

func (s *Scheduler) register(name string, system System) {
	s.initializeQueries(system)
	s.systems = append(s.systems, system)
	s.systemStats = append(s.systemStats, &systemStatsInternal{
		name:        name,
		minDuration: time.Duration(1<<63 - 1),
	})
	s.log.Debug().Str("system", name).Msg("system registered")
}

func (s *Scheduler) initializeQueries(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return
	}

	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		if strings.HasPrefix(field.Type().Name(), "Query[") {
			initMethod := field.Addr().MethodByName("Init")
			if !initMethod.IsValid() {
				panic("Init method not found on Query field: " + fieldType.Name)
			}
			initMethod.Call(nil)
		}
	}
}

// Frame returns the number of the next frame to run.
func (s *Scheduler) Frame() uint64 {
	return s.frame
}

// Once executes all registered systems once with the given delta time, then flushes
// the frame's commands. The first failing system aborts the frame.
func (s *Scheduler) Once(ctx context.Context, dt float64) error {
	return s.once(ctx, dt, time.Now())
}

func (s *Scheduler) once(ctx context.Context, dt float64, now time.Time) error {
	timing := Timing{DeltaTime: dt, Frame: s.frame, Time: now}
	s.frame++

	var scene *Scene
	if s.scenes != nil {
		scene = s.scenes.Current()
	}
	frame := newUpdateFrame(ctx, timing, scene)

	for i, system := range s.systems {
		start := time.Now()
		err := system.Execute(frame)
		duration := time.Since(start)

		stats := s.systemStats[i]
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}

		if err != nil {
			stats.failureCount++
			return eris.Wrapf(err, "frame %d: system %s failed", timing.Frame, stats.name)
		}
	}

	if err := frame.Commands.Flush(ctx, frame.Scene); err != nil {
		return eris.Wrapf(err, "frame %d", timing.Frame)
	}
	return nil
}

// Step runs one frame at time now. The delta time is the time since the previous
// Step, zero on the first, clamped to [0, MaxDelta].
func (s *Scheduler) Step(ctx context.Context, now time.Time) error {
	var dt time.Duration
	if !s.lastStep.IsZero() {
		dt = now.Sub(s.lastStep)
	}
	s.lastStep = now
	return s.once(ctx, ClampDelta(dt, s.maxDelta).Seconds(), now)
}

// ClampDelta bounds dt to [0, limit]. A non-positive limit disables the upper bound.
func ClampDelta(dt, limit time.Duration) time.Duration {
	if dt < 0 {
		return 0
	}
	if limit > 0 && dt > limit {
		return limit
	}
	return dt
}

// Run executes all systems repeatedly at the given interval until the context is
// cancelled or a frame fails. Cancellation is not an error.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := s.Step(ctx, now); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Frames:      s.frame,
		Systems:     make([]SystemStats, len(s.systemStats)),
	}

	var totalExecs int64
	for i, internal := range s.systemStats {
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			FailureCount:   internal.failureCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
