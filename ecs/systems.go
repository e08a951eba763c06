package ecs

import (
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// MaintenanceSystem completes pending component setups before anything else runs.
type MaintenanceSystem struct{}

func (s *MaintenanceSystem) Execute(frame *UpdateFrame) error {
	if frame.Scene == nil {
		return nil
	}
	return frame.Scene.Refresh(frame.Context())
}

// LogicSystem calls Update on every enabled, ready logic component of the active
// tree. All updates of a frame are issued together and awaited jointly, so an
// update must not assume that any other update has or has not run.
type LogicSystem struct {
	// MaxParallel bounds concurrent updates. Zero or less means no bound.
	MaxParallel int

	Updaters Query[Updater]
}

func (s *LogicSystem) Execute(frame *UpdateFrame) error {
	if err := s.Updaters.Execute(frame.Context(), frame.Scene); err != nil {
		return err
	}
	return issueAll(frame, s.MaxParallel, s.Updaters.Items(), "update", Updater.Update)
}

// DisplaySystem runs every display callback of the frame and, once all of them
// have finished, every camera render. Both lists are collected before any
// display runs, so a display that hides a camera only takes effect next frame.
type DisplaySystem struct {
	MaxParallel int

	Displayers Query[Displayer]
	Renderers  Query[Renderer]
}

func (s *DisplaySystem) Execute(frame *UpdateFrame) error {
	if err := s.Displayers.Execute(frame.Context(), frame.Scene); err != nil {
		return err
	}
	if err := s.Renderers.Execute(frame.Context(), frame.Scene); err != nil {
		return err
	}

	if err := issueAll(frame, s.MaxParallel, s.Displayers.Items(), "display", Displayer.Display); err != nil {
		return err
	}
	return issueAll(frame, s.MaxParallel, s.Renderers.Items(), "render", Renderer.Render)
}

// issueAll starts call for every item and waits for all of them. The first error
// cancels the context seen by the remaining calls and is returned.
func issueAll[T Component](frame *UpdateFrame, limit int, items []T, verb string, call func(T, *UpdateFrame) error) error {
	if len(items) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(frame.Context())
	if limit > 0 {
		g.SetLimit(limit)
	}
	pass := frame.withContext(ctx)

	for _, item := range items {
		g.Go(func() error {
			if err := call(item, pass); err != nil {
				b := item.Base()
				return eris.Wrapf(err, "%s of %s on %s failed", verb, b.Type(), b.Entity().Path())
			}
			return nil
		})
	}
	return g.Wait()
}
