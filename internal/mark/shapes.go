package mark

import (
	"math"

	"plan-marker/pkg/geometry"
)

const curveFlattenSegments = 16

// transformRing maps a local-space vertex ring into scene space: scale,
// rotate about the origin, then translate to the mark center.
func transformRing(local []geometry.Point2D, center geometry.Point2D, scale, rotationDeg float64) []geometry.Point2D {
	t := geometry.Translation(center.X, center.Y).
		Compose(geometry.Rotation(rotationDeg * math.Pi / 180)).
		Compose(geometry.Scale(scale, scale))

	out := make([]geometry.Point2D, len(local))
	for i, p := range local {
		out[i] = t.Apply(p)
	}
	return out
}

func outlineBounds(outlines [][]geometry.Point2D) geometry.Rect {
	var all []geometry.Point2D
	for _, ring := range outlines {
		all = append(all, ring...)
	}
	return geometry.BoundingBox(all)
}

// SquareMark is a filled square defect shape.
type SquareMark struct {
	core
	Size     float64
	LegacyID string
}

// NewSquareMark creates a square of the default size centered at p.
func NewSquareMark(p geometry.Point2D) *SquareMark {
	return NewSquareMarkWithSize(p, DefaultSquareSize)
}

// NewSquareMarkWithSize creates a square with an explicit side length.
func NewSquareMarkWithSize(p geometry.Point2D, size float64) *SquareMark {
	return &SquareMark{core: newCore(TypeSquare, p), Size: size}
}

func (m *SquareMark) localRing() []geometry.Point2D {
	h := m.Size / 2
	return []geometry.Point2D{
		{X: -h, Y: -h}, {X: h, Y: -h}, {X: h, Y: h}, {X: -h, Y: h},
	}
}

func (m *SquareMark) Outline() [][]geometry.Point2D {
	return [][]geometry.Point2D{transformRing(m.localRing(), m.center, m.scale, m.rotation)}
}

func (m *SquareMark) Bounds() geometry.Rect {
	return outlineBounds(m.Outline())
}

func (m *SquareMark) Contains(p geometry.Point2D) bool {
	return geometry.PointInPolygon(p, m.Outline()[0])
}

func (m *SquareMark) Record() Record {
	r := m.baseRecord()
	r.Size = m.Size
	if m.LegacyID != "" {
		r.DisplayID = m.LegacyID
	}
	return r
}

// TriangleMark is an equilateral triangle defect shape.
type TriangleMark struct {
	core
	Size     float64
	LegacyID string
}

// NewTriangleMark creates a triangle of the default size centered at p.
func NewTriangleMark(p geometry.Point2D) *TriangleMark {
	return NewTriangleMarkWithSize(p, DefaultTriangleSize)
}

// NewTriangleMarkWithSize creates a triangle with an explicit base width.
func NewTriangleMarkWithSize(p geometry.Point2D, size float64) *TriangleMark {
	return &TriangleMark{core: newCore(TypeTriangle, p), Size: size}
}

func (m *TriangleMark) localRing() []geometry.Point2D {
	h := m.Size * math.Sqrt(3) / 2
	return []geometry.Point2D{
		{X: 0, Y: -h / 2},
		{X: -m.Size / 2, Y: h / 2},
		{X: m.Size / 2, Y: h / 2},
	}
}

func (m *TriangleMark) Outline() [][]geometry.Point2D {
	return [][]geometry.Point2D{transformRing(m.localRing(), m.center, m.scale, m.rotation)}
}

func (m *TriangleMark) Bounds() geometry.Rect {
	return outlineBounds(m.Outline())
}

func (m *TriangleMark) Contains(p geometry.Point2D) bool {
	return geometry.PointInPolygon(p, m.Outline()[0])
}

func (m *TriangleMark) Record() Record {
	r := m.baseRecord()
	r.Size = m.Size
	if m.LegacyID != "" {
		r.DisplayID = m.LegacyID
	}
	return r
}

// SCurveMark is a crack annotation: an S-shaped cubic curve with a small
// hollow circle at its midpoint.
type SCurveMark struct {
	core
	W, H      float64
	MidR      float64
	Curvature float64
	LegacyID  string
}

// NewSCurveMark creates a crack curve of the default proportions.
func NewSCurveMark(p geometry.Point2D) *SCurveMark {
	return NewSCurveMarkWithSize(p, DefaultSCurveWidth, DefaultSCurveHeight)
}

// NewSCurveMarkWithSize creates a crack curve with explicit extents.
func NewSCurveMarkWithSize(p geometry.Point2D, w, h float64) *SCurveMark {
	return &SCurveMark{
		core:      newCore(TypeSCurve, p),
		W:         w,
		H:         h,
		MidR:      DefaultSCurveMidR,
		Curvature: DefaultSCurveCurve,
	}
}

func (m *SCurveMark) localCurve() []geometry.Point2D {
	top := -m.H / 2
	bottom := m.H / 2
	w2 := m.W / 2

	return geometry.FlattenCubic(
		geometry.Point2D{X: 0, Y: top},
		geometry.Point2D{X: -w2 * m.Curvature, Y: top + m.H*0.25},
		geometry.Point2D{X: w2 * m.Curvature, Y: top + m.H*0.75},
		geometry.Point2D{X: 0, Y: bottom},
		curveFlattenSegments,
	)
}

func (m *SCurveMark) Outline() [][]geometry.Point2D {
	curve := transformRing(m.localCurve(), m.center, m.scale, m.rotation)
	mid := geometry.CirclePoints(m.center.X, m.center.Y, m.MidR*m.scale, circleOutlineSegments)
	return [][]geometry.Point2D{curve, mid}
}

func (m *SCurveMark) Bounds() geometry.Rect {
	return outlineBounds(m.Outline())
}

func (m *SCurveMark) Contains(p geometry.Point2D) bool {
	return m.Bounds().Contains(p)
}

func (m *SCurveMark) Record() Record {
	r := m.baseRecord()
	r.W = m.W
	r.H = m.H
	if m.LegacyID != "" {
		r.DisplayID = m.LegacyID
	}
	return r
}

// NoteText is a free-form text annotation with no leader line.
type NoteText struct {
	core
	Text string

	// Width/Height hold the rendered text extents; estimated until the UI
	// layer measures them.
	Width  float64
	Height float64
}

// NewNoteText creates a text note at p.
func NewNoteText(p geometry.Point2D, text string) *NoteText {
	if text == "" {
		text = DefaultNoteTextValue
	}
	n := &NoteText{core: newCore(TypeNoteText, p), Text: text}
	n.Width = float64(len([]rune(text))) * labelCharWidth
	n.Height = defaultLabelHeight
	return n
}

// SetText replaces the note content and refreshes the estimated extents.
func (m *NoteText) SetText(text string) {
	m.Text = text
	m.Width = float64(len([]rune(text))) * labelCharWidth
	m.changed()
}

func (m *NoteText) Bounds() geometry.Rect {
	return geometry.NewRect(m.center.X, m.center.Y, m.Width*m.scale, m.Height*m.scale)
}

func (m *NoteText) Contains(p geometry.Point2D) bool {
	return m.Bounds().Contains(p)
}

func (m *NoteText) Record() Record {
	r := m.baseRecord()
	r.Text = m.Text
	return r
}

// Leader returns nil: text notes never carry a leader line.
func (m *NoteText) Leader() *LeaderLine { return nil }

// SetLeader is a no-op for text notes.
func (m *NoteText) SetLeader(*LeaderLine) {}
