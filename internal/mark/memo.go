package mark

import (
	"math"

	"plan-marker/pkg/geometry"
)

// Memo record type tags.
const (
	MemoTypeLine = "memo_line"
	MemoTypeFree = "memo_free"
)

// Memo is a freehand annotation stroke. Memos are not defects: they are
// excluded from numbering, defect details, and the persisted item list, and
// round-trip only through undo/redo snapshots.
type Memo interface {
	MemoType() string
	Bounds() geometry.Rect

	// Hit reports whether a scene point lies within width units of the
	// stroke.
	Hit(p geometry.Point2D, width float64) bool

	Selected() bool
	SetSelected(bool)

	MemoRecord() MemoRecord
}

// MemoLine is a straight memo stroke.
type MemoLine struct {
	P1, P2   geometry.Point2D
	selected bool
}

// NewMemoLine creates a line stroke between two points.
func NewMemoLine(p1, p2 geometry.Point2D) *MemoLine {
	return &MemoLine{P1: p1, P2: p2}
}

func (m *MemoLine) MemoType() string   { return MemoTypeLine }
func (m *MemoLine) Selected() bool     { return m.selected }
func (m *MemoLine) SetSelected(v bool) { m.selected = v }

// Length returns the stroke length.
func (m *MemoLine) Length() float64 {
	return m.P1.Distance(m.P2)
}

func (m *MemoLine) Bounds() geometry.Rect {
	return geometry.BoundingBox([]geometry.Point2D{m.P1, m.P2})
}

func (m *MemoLine) Hit(p geometry.Point2D, width float64) bool {
	return distToSegment(p, m.P1, m.P2) <= width/2
}

func (m *MemoLine) MemoRecord() MemoRecord {
	return MemoRecord{
		Type: MemoTypeLine,
		P1:   []float64{m.P1.X, m.P1.Y},
		P2:   []float64{m.P2.X, m.P2.Y},
	}
}

// MemoFreePath is a freehand memo stroke. Every pointer move during creation
// appends a point; no simplification is applied.
type MemoFreePath struct {
	Points   []geometry.Point2D
	selected bool
}

// NewMemoFreePath starts a freehand stroke at p.
func NewMemoFreePath(p geometry.Point2D) *MemoFreePath {
	return &MemoFreePath{Points: []geometry.Point2D{p}}
}

func (m *MemoFreePath) MemoType() string   { return MemoTypeFree }
func (m *MemoFreePath) Selected() bool     { return m.selected }
func (m *MemoFreePath) SetSelected(v bool) { m.selected = v }

// AddPoint extends the stroke.
func (m *MemoFreePath) AddPoint(p geometry.Point2D) {
	m.Points = append(m.Points, p)
}

func (m *MemoFreePath) Bounds() geometry.Rect {
	return geometry.BoundingBox(m.Points)
}

func (m *MemoFreePath) Hit(p geometry.Point2D, width float64) bool {
	for i := 0; i+1 < len(m.Points); i++ {
		if distToSegment(p, m.Points[i], m.Points[i+1]) <= width/2 {
			return true
		}
	}
	return false
}

func (m *MemoFreePath) MemoRecord() MemoRecord {
	pts := make([][]float64, len(m.Points))
	for i, p := range m.Points {
		pts[i] = []float64{p.X, p.Y}
	}
	return MemoRecord{Type: MemoTypeFree, Pts: pts}
}

// MemoFromRecord rebuilds a memo stroke from its snapshot record. Unknown
// types and malformed coordinates return nil.
func MemoFromRecord(rec MemoRecord) Memo {
	switch rec.Type {
	case MemoTypeLine:
		if len(rec.P1) < 2 || len(rec.P2) < 2 {
			return nil
		}
		return NewMemoLine(
			geometry.Point2D{X: rec.P1[0], Y: rec.P1[1]},
			geometry.Point2D{X: rec.P2[0], Y: rec.P2[1]},
		)
	case MemoTypeFree:
		if len(rec.Pts) == 0 {
			return nil
		}
		pts := make([]geometry.Point2D, 0, len(rec.Pts))
		for _, p := range rec.Pts {
			if len(p) < 2 {
				return nil
			}
			pts = append(pts, geometry.Point2D{X: p[0], Y: p[1]})
		}
		return &MemoFreePath{Points: pts}
	}
	return nil
}

func distToSegment(p, a, b geometry.Point2D) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	t = math.Max(0, math.Min(1, t))
	proj := geometry.Point2D{X: a.X + t*ab.X, Y: a.Y + t*ab.Y}
	return p.Distance(proj)
}
