package ecs

import (
	"context"
	"time"
)

// Timing is the per-frame clock information.
type Timing struct {
	// DeltaTime is the elapsed time since the previous frame in seconds.
	DeltaTime float64
	// Frame counts frames from zero.
	Frame uint64
	// Time is the wall clock time the frame started.
	Time time.Time
}

// UpdateFrame is handed to every system and, through them, to every component
// callback of one frame.
type UpdateFrame struct {
	Timing
	Scene    *Scene
	Commands *Commands

	ctx context.Context
}

func newUpdateFrame(ctx context.Context, timing Timing, scene *Scene) *UpdateFrame {
	return &UpdateFrame{
		Timing:   timing,
		Scene:    scene,
		Commands: newCommands(),
		ctx:      ctx,
	}
}

// NewUpdateFrame builds a frame outside of a Scheduler, for driving systems by hand.
func NewUpdateFrame(ctx context.Context, timing Timing, scene *Scene) *UpdateFrame {
	return newUpdateFrame(ctx, timing, scene)
}

// Context is cancelled when the frame is abandoned, either by the caller or by a
// failing sibling callback in the same pass.
func (f *UpdateFrame) Context() context.Context {
	if f.ctx == nil {
		return context.Background()
	}
	return f.ctx
}

func (f *UpdateFrame) withContext(ctx context.Context) *UpdateFrame {
	frame := *f
	frame.ctx = ctx
	return &frame
}
