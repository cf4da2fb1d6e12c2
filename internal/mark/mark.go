// Package mark defines the annotation entities placed on a floor plan:
// defect shapes with optional leader lines and labels, free text notes,
// and memo strokes.
package mark

import (
	"plan-marker/pkg/geometry"
)

// Type tags used in persisted records. They double as registry keys.
const (
	TypeCircle   = "CircleMark"
	TypeSquare   = "SquareMark"
	TypeTriangle = "TriangleMark"
	TypeSCurve   = "SCurveMark"
	TypeNoteText = "NoteText"

	// typeSCurveLegacy is the tag written by old project files.
	typeSCurveLegacy = "SCurveWithMidCircle"
)

// Default shape dimensions in scene units.
const (
	DefaultCircleRadius  = 18.0
	DefaultSquareSize    = 36.0
	DefaultTriangleSize  = 40.0
	DefaultSCurveWidth   = 43.0
	DefaultSCurveHeight  = 55.0
	DefaultSCurveMidR    = 8.0
	DefaultSCurveCurve   = 0.9
	DefaultNoteTextValue = "Defect"
)

// Mark is the capability set shared by every placeable defect annotation.
// Memo strokes are not Marks; they carry no ids, records, or leader lines.
type Mark interface {
	ID() string
	TypeTag() string

	Center() geometry.Point2D
	SetCenter(geometry.Point2D)
	Scale() float64
	SetScale(float64)
	Rotation() float64
	SetRotation(float64)

	// Bounds is the scene-space axis-aligned bounding box at current
	// position and scale.
	Bounds() geometry.Rect

	// Contains reports whether a scene point hits the mark body.
	Contains(p geometry.Point2D) bool

	Visible() bool
	SetVisible(bool)
	Selected() bool
	SetSelected(bool)

	// Record serializes the mark for persistence and snapshots.
	Record() Record

	// SetChangeSink installs the dirty callback the controller injects at
	// creation; geometry setters invoke it.
	SetChangeSink(func())
}

// Outliner yields the mark's outline as scene-space closed polylines, used
// for leader-line ray casting.
type Outliner interface {
	Outline() [][]geometry.Point2D
}

// LeaderLineOwner is implemented by marks that may carry a leader line.
type LeaderLineOwner interface {
	Leader() *LeaderLine
	SetLeader(*LeaderLine)
}

// LabelOwner is implemented by marks that may carry a text label.
type LabelOwner interface {
	Label() *Label
	EnableLabel(text string)
	DisableLabel()
}

// core holds the state every mark variant embeds.
type core struct {
	id       string
	typeTag  string
	center   geometry.Point2D
	scale    float64
	rotation float64
	visible  bool
	selected bool

	leader *LeaderLine
	label  *Label

	onChange func()
}

func newCore(typeTag string, center geometry.Point2D) core {
	return core{
		typeTag: typeTag,
		center:  center,
		scale:   1.0,
		visible: true,
	}
}

func (c *core) ID() string               { return c.id }
func (c *core) SetID(id string)          { c.id = id }
func (c *core) TypeTag() string          { return c.typeTag }
func (c *core) Center() geometry.Point2D { return c.center }
func (c *core) Scale() float64           { return c.scale }
func (c *core) Rotation() float64        { return c.rotation }
func (c *core) Visible() bool            { return c.visible }
func (c *core) SetVisible(v bool)        { c.visible = v }
func (c *core) Selected() bool           { return c.selected }
func (c *core) SetSelected(v bool)       { c.selected = v }
func (c *core) Leader() *LeaderLine      { return c.leader }
func (c *core) SetLeader(l *LeaderLine)  { c.leader = l }
func (c *core) Label() *Label            { return c.label }
func (c *core) SetChangeSink(fn func())  { c.onChange = fn }

func (c *core) SetCenter(p geometry.Point2D) {
	c.center = p
	c.changed()
}

func (c *core) SetScale(s float64) {
	c.scale = s
	c.changed()
}

func (c *core) SetRotation(deg float64) {
	c.rotation = deg
	c.changed()
}

func (c *core) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

// EnableLabel attaches a label, or updates the existing one's text.
func (c *core) EnableLabel(text string) {
	if c.label != nil {
		c.label.Text = text
		return
	}
	c.label = NewLabel(text)
}

// DisableLabel removes the label.
func (c *core) DisableLabel() {
	c.label = nil
}

// baseRecord fills the fields common to every variant.
func (c *core) baseRecord() Record {
	r := Record{
		Type:     c.typeTag,
		X:        c.center.X,
		Y:        c.center.Y,
		Scale:    c.scale,
		Rotation: c.rotation,
	}
	if c.id != "" {
		r.InternalID = c.id
	}
	if c.leader != nil {
		r.Line = &LineRecord{
			P1: [2]float64{c.leader.Anchor.X, c.leader.Anchor.Y},
			P2: [2]float64{c.leader.End.X, c.leader.End.Y},
		}
	}
	return r
}

// MoveTo repositions a mark and re-syncs its leader line and label, the same
// sequence the position-changed hook performs during drags.
func MoveTo(m Mark, p geometry.Point2D) {
	m.SetCenter(p)
	SyncLeader(m)
	SyncLabel(m)
}

// Rescale changes a mark's scale (saturating at variant-specific bounds) and
// re-syncs dependent geometry.
func Rescale(m Mark, s float64) {
	m.SetScale(s)
	SyncLeader(m)
	SyncLabel(m)
}
