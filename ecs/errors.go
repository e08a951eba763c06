package ecs

import "github.com/rotisserie/eris"

var (
	// ErrAlreadyParented is returned when attaching an entity that already has a parent.
	ErrAlreadyParented = eris.New("entity already has a parent")

	// ErrNotParentedHere is returned when removing an entity that is not a child of the caller.
	ErrNotParentedHere = eris.New("entity is not a child of this parent")

	// ErrDuplicateChild is returned when a sibling with the same name already exists.
	ErrDuplicateChild = eris.New("child name already in use")

	// ErrUnknownComponent is returned when a component type tag has no registered constructor.
	ErrUnknownComponent = eris.New("unknown component type")

	// ErrNoRegistry is returned when an entity has no registry to construct components from.
	ErrNoRegistry = eris.New("entity has no component registry")

	// ErrBadReference is returned for a reference string that is not "<entity>.<type>".
	ErrBadReference = eris.New("malformed component reference")

	// ErrUnresolvedReference is returned when a reference names a missing entity or component.
	ErrUnresolvedReference = eris.New("component reference does not resolve")

	// ErrSetupDiverged is returned when Refresh exceeds the configured number of setup passes.
	ErrSetupDiverged = eris.New("setup queue did not drain")

	// ErrSkipChildren can be returned from a Walk callback to skip the entity's descendants.
	ErrSkipChildren = eris.New("skip children")

	// ErrNoScene is returned by stage operations that need a loaded scene.
	ErrNoScene = eris.New("no scene loaded")
)

// ErrCycle is returned when attaching an entity underneath itself or one of its descendants.
var ErrCycle = eris.New("entity cannot become its own descendant")
