package mark

import (
	"plan-marker/pkg/geometry"
)

const circleOutlineSegments = 36

// CircleMark is a point-defect annotation: a circle with a centered
// sequential display number, an optional leader line and label, and a
// structured defect record.
type CircleMark struct {
	core
	Radius    float64
	DisplayID int
	Info      DefectInfo
}

// NewCircleMark creates a circle of the default radius centered at p.
func NewCircleMark(p geometry.Point2D) *CircleMark {
	return NewCircleMarkWithRadius(p, DefaultCircleRadius)
}

// NewCircleMarkWithRadius creates a circle with an explicit radius; used
// when restoring persisted records.
func NewCircleMarkWithRadius(p geometry.Point2D, r float64) *CircleMark {
	return &CircleMark{
		core:   newCore(TypeCircle, p),
		Radius: r,
	}
}

// SetDisplayID updates the visible centered numeral.
func (m *CircleMark) SetDisplayID(n int) {
	m.DisplayID = n
	m.changed()
}

func (m *CircleMark) effectiveRadius() float64 {
	return m.Radius * m.scale
}

func (m *CircleMark) Bounds() geometry.Rect {
	r := m.effectiveRadius()
	return geometry.NewRect(m.center.X-r, m.center.Y-r, 2*r, 2*r)
}

func (m *CircleMark) Contains(p geometry.Point2D) bool {
	return m.center.Distance(p) <= m.effectiveRadius()
}

func (m *CircleMark) Outline() [][]geometry.Point2D {
	ring := geometry.CirclePoints(m.center.X, m.center.Y, m.effectiveRadius(), circleOutlineSegments)
	return [][]geometry.Point2D{ring}
}

func (m *CircleMark) Record() Record {
	r := m.baseRecord()
	r.Radius = m.Radius
	if m.DisplayID != 0 {
		r.DisplayID = m.DisplayID
	}
	info := m.Info
	r.DefectInfo = &info
	return r
}
