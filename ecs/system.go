package ecs

// System represents one stage of the frame. User-defined systems implement this
// interface and can include Query fields, which the Scheduler initializes on
// registration, as well as custom state fields that persist between frames.
//
// A returned error aborts the frame.
type System interface {
	Execute(frame *UpdateFrame) error
}

// SystemFunc adapts a function to a System.
type SystemFunc func(frame *UpdateFrame) error

func (f SystemFunc) Execute(frame *UpdateFrame) error {
	return f(frame)
}
