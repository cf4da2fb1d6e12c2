package mark

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-marker/pkg/geometry"
)

func TestLeaderInvariant(t *testing.T) {
	c := NewCircleMark(geometry.Point2D{X: 200, Y: 200})
	anchor := geometry.Point2D{X: 100, Y: 200}
	BeginAttach(c, anchor)

	moves := []geometry.Point2D{
		{X: 250, Y: 180}, {X: 300, Y: 300}, {X: 150, Y: 260},
	}
	for _, p := range moves {
		MoveTo(c, p)

		l := c.Leader()
		require.NotNil(t, l)
		// Anchor never moves outside an explicit anchor drag.
		assert.Equal(t, anchor, l.Anchor)
		// End lies on the circle boundary.
		dist := c.Center().Distance(l.End)
		assert.InDelta(t, c.Radius*c.Scale(), dist, 0.5)
	}

	// Scaling re-syncs the end onto the new boundary.
	Rescale(c, 2.0)
	dist := c.Center().Distance(c.Leader().End)
	assert.InDelta(t, c.Radius*2.0, dist, 0.5)
	assert.Equal(t, anchor, c.Leader().Anchor)
}

func TestLeaderAnchorInsideFallsBackToCenter(t *testing.T) {
	c := NewCircleMark(geometry.Point2D{X: 100, Y: 100})
	// Anchor coincident with the center: no well-defined ray.
	BeginAttach(c, geometry.Point2D{X: 100, Y: 100})
	SyncLeader(c)

	assert.Equal(t, c.Center(), c.Leader().End)
}

func TestMoveAnchor(t *testing.T) {
	c := NewCircleMark(geometry.Point2D{X: 200, Y: 200})
	BeginAttach(c, geometry.Point2D{X: 100, Y: 200})

	newAnchor := geometry.Point2D{X: 200, Y: 100}
	MoveAnchor(c, newAnchor)

	assert.Equal(t, newAnchor, c.Leader().Anchor)
	// End recomputed toward the center from the new anchor.
	dist := c.Center().Distance(c.Leader().End)
	assert.InDelta(t, c.Radius, dist, 0.5)
}

func TestCancelLeader(t *testing.T) {
	c := NewCircleMark(geometry.Point2D{X: 50, Y: 50})
	BeginAttach(c, geometry.Point2D{X: 10, Y: 10})
	require.NotNil(t, c.Leader())

	CancelLeader(c)
	assert.Nil(t, c.Leader())
}

func TestNoteTextHasNoLeader(t *testing.T) {
	n := NewNoteText(geometry.Point2D{X: 10, Y: 10}, "stain")
	BeginAttach(n, geometry.Point2D{X: 0, Y: 0})
	assert.Nil(t, n.Leader())
}

func TestLabelOffset(t *testing.T) {
	s := NewSquareMark(geometry.Point2D{X: 100, Y: 100})
	s.EnableLabel("Wall")
	SyncLabel(s)

	b := s.Bounds()
	label := s.Label()
	require.NotNil(t, label)
	assert.InDelta(t, b.X+b.Width+6, label.Pos.X, 1e-9)
	assert.InDelta(t, b.Y+b.Height-label.Height+2, label.Pos.Y, 1e-9)
}

func TestTriangleOutlineGeometry(t *testing.T) {
	tri := NewTriangleMark(geometry.Point2D{X: 0, Y: 0})
	rings := tri.Outline()
	require.Len(t, rings, 1)
	require.Len(t, rings[0], 3)

	h := DefaultTriangleSize * math.Sqrt(3) / 2
	assert.InDelta(t, -h/2, rings[0][0].Y, 1e-9)
	assert.InDelta(t, -DefaultTriangleSize/2, rings[0][1].X, 1e-9)

	assert.True(t, tri.Contains(geometry.Point2D{X: 0, Y: 5}))
	assert.False(t, tri.Contains(geometry.Point2D{X: 100, Y: 100}))
}

func TestSquareRotationAffectsHitTest(t *testing.T) {
	s := NewSquareMark(geometry.Point2D{X: 0, Y: 0})
	corner := geometry.Point2D{X: 17, Y: 17}
	assert.True(t, s.Contains(corner))

	// Rotated 45 degrees the old corner region is outside the diamond.
	s.SetRotation(45)
	assert.False(t, s.Contains(corner))
	assert.True(t, s.Contains(geometry.Point2D{X: 0, Y: 0}))
}

func TestRecordRoundTrip(t *testing.T) {
	c := NewCircleMark(geometry.Point2D{X: 42, Y: 24})
	c.SetID("abc-123")
	c.SetDisplayID(7)
	c.Info = DefectInfo{Member: "Wall", Location: "2F corridor"}
	BeginAttach(c, geometry.Point2D{X: 10, Y: 24})
	SyncLeader(c)

	rec := c.Record()
	assert.Equal(t, TypeCircle, rec.Type)
	assert.Equal(t, 42.0, rec.X)
	assert.Equal(t, "abc-123", rec.InternalID)
	assert.Equal(t, 7, rec.DisplayID)
	require.NotNil(t, rec.Line)
	assert.Equal(t, [2]float64{10, 24}, rec.Line.P1)
	require.NotNil(t, rec.DefectInfo)
	assert.Equal(t, "2F corridor", rec.DefectInfo.Location)

	restored, ok := FromRecord(rec)
	require.True(t, ok)
	rc, ok := restored.(*CircleMark)
	require.True(t, ok)
	assert.Equal(t, geometry.Point2D{X: 42, Y: 24}, rc.Center())
	assert.Equal(t, DefaultCircleRadius, rc.Radius)
}

func TestFromRecordLegacySCurveAlias(t *testing.T) {
	rec := Record{Type: "SCurveWithMidCircle", X: 5, Y: 6, W: 50, H: 60}
	m, ok := FromRecord(rec)
	require.True(t, ok)
	sc, ok := m.(*SCurveMark)
	require.True(t, ok)
	assert.Equal(t, TypeSCurve, sc.TypeTag())
	assert.Equal(t, 50.0, sc.W)
	assert.Equal(t, 60.0, sc.H)
}

func TestFromRecordUnknownType(t *testing.T) {
	_, ok := FromRecord(Record{Type: "HexMark"})
	assert.False(t, ok)
}

func TestFromRecordZeroSizeDefaults(t *testing.T) {
	m, ok := FromRecord(Record{Type: TypeSquare, X: 1, Y: 2})
	require.True(t, ok)
	assert.Equal(t, DefaultSquareSize, m.(*SquareMark).Size)
}

func TestDisplayIDNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"int", 9, 9, true},
		{"json float", float64(12), 12, true},
		{"legacy string", "D-7", 7, true},
		{"bare numeric string", "15", 15, true},
		{"garbage string", "seven", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := DisplayIDNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestMemoLineHit(t *testing.T) {
	m := NewMemoLine(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 100, Y: 0})

	assert.True(t, m.Hit(geometry.Point2D{X: 50, Y: 4}, 10))
	assert.False(t, m.Hit(geometry.Point2D{X: 50, Y: 8}, 10))
	assert.InDelta(t, 100.0, m.Length(), 1e-9)
}

func TestMemoFreePathRoundTrip(t *testing.T) {
	p := NewMemoFreePath(geometry.Point2D{X: 0, Y: 0})
	p.AddPoint(geometry.Point2D{X: 10, Y: 10})
	p.AddPoint(geometry.Point2D{X: 20, Y: 5})

	rec := p.MemoRecord()
	assert.Equal(t, MemoTypeFree, rec.Type)
	require.Len(t, rec.Pts, 3)

	back := MemoFromRecord(rec)
	require.NotNil(t, back)
	fp, ok := back.(*MemoFreePath)
	require.True(t, ok)
	assert.Equal(t, p.Points, fp.Points)
}

func TestMemoFromRecordUnknown(t *testing.T) {
	assert.Nil(t, MemoFromRecord(MemoRecord{Type: "memo_polygon"}))
	assert.Nil(t, MemoFromRecord(MemoRecord{Type: MemoTypeLine, P1: []float64{1}}))
}
