// Package editor implements the annotation scene controller: it owns the
// mark collection, interprets pointer intents through a drag state machine,
// and maintains snapshot-based undo/redo history.
package editor

import (
	"time"

	"plan-marker/pkg/geometry"
)

// IntentKind enumerates the closed set of pointer inputs the controller
// consumes. The UI layer translates raw toolkit events into these.
type IntentKind int

const (
	IntentPress IntentKind = iota + 1
	IntentMove
	IntentRelease
	IntentDoubleClick
	IntentHover
	IntentWheel
)

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
)

// Intent is a single pointer input in scene coordinates.
type Intent struct {
	Kind IntentKind
	At   geometry.Point2D
	Mods Modifier

	// WheelDelta is positive for scroll-up. Only set for IntentWheel.
	WheelDelta float64
}

// Tool selects what a creation gesture produces.
type Tool string

const (
	ToolCircle   Tool = "circle"
	ToolSquare   Tool = "rect"
	ToolTriangle Tool = "tri"
	ToolSCurve   Tool = "s"
	ToolText     Tool = "text"
	ToolMemoLine Tool = "memo_line"
	ToolMemoFree Tool = "memo_free"
)

func (t Tool) isBasicShape() bool {
	switch t {
	case ToolCircle, ToolSquare, ToolTriangle, ToolSCurve, ToolText:
		return true
	}
	return false
}

// EditMode switches between single-selection and rubber-band selection.
type EditMode int

const (
	ModeSelect EditMode = iota
	ModeAreaSelect
)

// DragMode is the pointer drag state.
type DragMode int

const (
	DragNone DragMode = iota
	DragCreate
	DragMove
	DragMoveAnchor
	DragBand
)

// Clock supplies the current time to the controller's deadline scheduling.
// Tests substitute a manual clock to drive timers deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
