package editor

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-marker/internal/config"
	"plan-marker/internal/mark"
	"plan-marker/pkg/geometry"
)

type manualClock struct{ t time.Time }

func (c *manualClock) Now() time.Time          { return c.t }
func (c *manualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEditor() (*Editor, *manualClock) {
	e := NewEditor(config.GetTuning(), zerolog.Nop())
	clk := &manualClock{t: time.Unix(1000, 0)}
	e.SetClock(clk)
	e.SetImage("plan.png", geometry.NewSize(2000, 1500))
	e.ResetBaseline()
	return e, clk
}

func press(p geometry.Point2D) Intent { return Intent{Kind: IntentPress, At: p} }

func move(p geometry.Point2D) Intent { return Intent{Kind: IntentMove, At: p} }

func release(p geometry.Point2D) Intent { return Intent{Kind: IntentRelease, At: p} }

func doubleClick(p geometry.Point2D) Intent { return Intent{Kind: IntentDoubleClick, At: p} }

func hover(p geometry.Point2D) Intent { return Intent{Kind: IntentHover, At: p} }

// dragCreateCircle drives the full press-hold → drag → release gesture.
func dragCreateCircle(e *Editor, clk *manualClock, from, to geometry.Point2D) {
	e.Handle(press(from))
	clk.Advance(600 * time.Millisecond)
	e.Tick(clk.Now())
	e.Handle(move(to))
	e.Handle(release(to))
}

func TestDragCreateCircle(t *testing.T) {
	e, clk := newTestEditor()

	dragCreateCircle(e, clk, geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 240, Y: 220})

	marks := e.Marks()
	require.Len(t, marks, 1)
	c, ok := marks[0].(*mark.CircleMark)
	require.True(t, ok)

	assert.Equal(t, 1, c.DisplayID)
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, geometry.Point2D{X: 240, Y: 220}, c.Center())
	assert.Equal(t, "Wall", c.Info.Member)
	assert.True(t, c.Visible())

	// Leader anchored at the original press point, ending on the boundary.
	require.NotNil(t, c.Leader())
	assert.Equal(t, geometry.Point2D{X: 100, Y: 100}, c.Leader().Anchor)
	assert.InDelta(t, c.Radius, c.Center().Distance(c.Leader().End), 0.5)

	assert.True(t, e.Dirty())
}

func TestQuickReleaseCreatesNothing(t *testing.T) {
	e, clk := newTestEditor()

	// Released before the press-hold timer fires: reserved for double-click.
	e.Handle(press(geometry.Point2D{X: 100, Y: 100}))
	clk.Advance(100 * time.Millisecond)
	e.Tick(clk.Now())
	e.Handle(release(geometry.Point2D{X: 100, Y: 100}))

	assert.Empty(t, e.Marks())
}

func TestUndersizedDragCreateRejected(t *testing.T) {
	e, clk := newTestEditor()

	// Displacement below mark extent + slack is discarded.
	dragCreateCircle(e, clk, geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 112, Y: 108})

	assert.Empty(t, e.Marks())
	// The aborted gesture must not have polluted history.
	assert.False(t, e.CanUndo())
}

func TestDoubleClickCreation(t *testing.T) {
	e, _ := newTestEditor()
	e.SetTool(ToolTriangle)

	e.Handle(doubleClick(geometry.Point2D{X: 300, Y: 300}))

	marks := e.Marks()
	require.Len(t, marks, 1)
	assert.IsType(t, &mark.TriangleMark{}, marks[0])
	assert.True(t, marks[0].Selected())
	assert.True(t, e.CanUndo())
}

func TestPlacementGuard(t *testing.T) {
	e, _ := newTestEditor()

	e.Handle(doubleClick(geometry.Point2D{X: 300, Y: 300}))
	require.Len(t, e.Marks(), 1)

	// Directly on top of the existing mark: silently rejected.
	e.Handle(doubleClick(geometry.Point2D{X: 302, Y: 298}))
	assert.Len(t, e.Marks(), 1)
}

func TestNoCreationWithoutImage(t *testing.T) {
	e := NewEditor(config.GetTuning(), zerolog.Nop())
	e.Handle(doubleClick(geometry.Point2D{X: 10, Y: 10}))
	assert.Empty(t, e.Marks())
}

func TestRenumberingAfterDelete(t *testing.T) {
	e, _ := newTestEditor()

	for _, p := range []geometry.Point2D{{X: 100, Y: 100}, {X: 300, Y: 100}, {X: 500, Y: 100}} {
		e.Handle(doubleClick(p))
	}
	circles := e.Marks()
	require.Len(t, circles, 3)

	// Delete the middle circle (display id 2).
	e.SelectOnly(circles[1])
	e.DeleteSelected()

	var got []int
	for _, m := range e.Marks() {
		got = append(got, m.(*mark.CircleMark).DisplayID)
	}
	assert.ElementsMatch(t, []int{1, 2}, got)
	// Ids reassigned in ascending order of their previous values.
	assert.Equal(t, 1, e.Marks()[0].(*mark.CircleMark).DisplayID)
	assert.Equal(t, 2, e.Marks()[1].(*mark.CircleMark).DisplayID)
}

func TestUndoRedoInverse(t *testing.T) {
	e, _ := newTestEditor()
	s0 := e.MakeSnapshot()

	e.Handle(doubleClick(geometry.Point2D{X: 300, Y: 300}))
	s1 := e.MakeSnapshot()
	require.Len(t, s1.Items, 1)

	e.Undo()
	assert.True(t, e.MakeSnapshot().Equal(s0))

	e.Redo()
	got := e.MakeSnapshot()
	assert.True(t, got.Equal(s1))
}

func TestUndoUnderflowIgnored(t *testing.T) {
	e, _ := newTestEditor()

	// Baseline alone: nothing to undo, nothing to redo.
	e.Undo()
	e.Redo()
	assert.Empty(t, e.Marks())
}

func TestNewEditInvalidatesRedo(t *testing.T) {
	e, _ := newTestEditor()

	e.Handle(doubleClick(geometry.Point2D{X: 300, Y: 300}))
	e.Undo()
	require.True(t, e.CanRedo())

	e.Handle(doubleClick(geometry.Point2D{X: 600, Y: 600}))
	assert.False(t, e.CanRedo())
}

func TestSnapshotRoundTripThroughUndoRedo(t *testing.T) {
	e, clk := newTestEditor()

	dragCreateCircle(e, clk, geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 260, Y: 240})

	e.SetTool(ToolMemoLine)
	e.Handle(press(geometry.Point2D{X: 400, Y: 400}))
	e.Handle(move(geometry.Point2D{X: 500, Y: 480}))
	e.Handle(release(geometry.Point2D{X: 500, Y: 480}))

	before := e.MakeSnapshot()
	require.Len(t, before.Items, 1)
	require.Len(t, before.Memos, 1)

	// A further edit, then undo back to the captured state.
	e.SetTool(ToolSquare)
	e.Handle(doubleClick(geometry.Point2D{X: 800, Y: 800}))
	e.Undo()

	after := e.MakeSnapshot()
	assert.True(t, before.Equal(after), "restored scene differs from snapshot")
	require.Len(t, e.Memos(), 1)
	require.Len(t, e.Marks(), 1)

	c := e.Marks()[0].(*mark.CircleMark)
	assert.Equal(t, geometry.Point2D{X: 260, Y: 240}, c.Center())
	assert.Equal(t, 1, c.DisplayID)
	require.NotNil(t, c.Leader())
	assert.Equal(t, geometry.Point2D{X: 100, Y: 100}, c.Leader().Anchor)
}

func TestUndersizedMemoLineDiscarded(t *testing.T) {
	e, _ := newTestEditor()
	e.SetTool(ToolMemoLine)

	e.Handle(press(geometry.Point2D{X: 100, Y: 100}))
	e.Handle(move(geometry.Point2D{X: 104, Y: 103}))
	e.Handle(release(geometry.Point2D{X: 104, Y: 103}))

	assert.Empty(t, e.Memos())
}

func TestUndersizedMemoPathDiscarded(t *testing.T) {
	e, _ := newTestEditor()
	e.SetTool(ToolMemoFree)

	e.Handle(press(geometry.Point2D{X: 100, Y: 100}))
	e.Handle(move(geometry.Point2D{X: 103, Y: 102}))
	e.Handle(move(geometry.Point2D{X: 104, Y: 104}))
	e.Handle(release(geometry.Point2D{X: 104, Y: 104}))

	assert.Empty(t, e.Memos())
}

func TestMemoLineCreation(t *testing.T) {
	e, _ := newTestEditor()
	e.SetTool(ToolMemoLine)

	e.Handle(press(geometry.Point2D{X: 100, Y: 100}))
	e.Handle(move(geometry.Point2D{X: 200, Y: 150}))
	e.Handle(release(geometry.Point2D{X: 200, Y: 150}))

	require.Len(t, e.Memos(), 1)
	line := e.Memos()[0].(*mark.MemoLine)
	assert.Equal(t, geometry.Point2D{X: 100, Y: 100}, line.P1)
	assert.Equal(t, geometry.Point2D{X: 200, Y: 150}, line.P2)
}

func TestWheelScaleClampAndCoalescing(t *testing.T) {
	e, clk := newTestEditor()

	e.Handle(doubleClick(geometry.Point2D{X: 300, Y: 300}))
	c := e.Marks()[0].(*mark.CircleMark)
	e.SelectOnly(c)

	undoDepth := len(e.undoStack)

	// Many overshooting wheel steps within the coalescing window.
	for i := 0; i < 20; i++ {
		e.Handle(Intent{Kind: IntentWheel, Mods: ModCtrl, WheelDelta: 1})
		clk.Advance(50 * time.Millisecond)
		e.Tick(clk.Now())
	}
	assert.Equal(t, e.tun.MarkScaleMax, c.Scale())

	// Let the coalescing timer expire: exactly one new history entry.
	clk.Advance(400 * time.Millisecond)
	e.Tick(clk.Now())
	assert.Equal(t, undoDepth+1, len(e.undoStack))
}

func TestMoveDragSyncsLeaderAndCoalesces(t *testing.T) {
	e, clk := newTestEditor()

	dragCreateCircle(e, clk, geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 260, Y: 240})
	c := e.Marks()[0].(*mark.CircleMark)
	anchor := c.Leader().Anchor

	// Move the circle: anchor fixed, end follows the boundary.
	e.Handle(press(geometry.Point2D{X: 260, Y: 240}))
	e.Handle(move(geometry.Point2D{X: 500, Y: 400}))
	e.Handle(release(geometry.Point2D{X: 500, Y: 400}))

	assert.Equal(t, geometry.Point2D{X: 500, Y: 400}, c.Center())
	assert.Equal(t, anchor, c.Leader().Anchor)
	assert.InDelta(t, c.Radius*c.Scale(), c.Center().Distance(c.Leader().End), 0.5)

	// History entry lands only after the coalescing window closes.
	depth := len(e.undoStack)
	clk.Advance(400 * time.Millisecond)
	e.Tick(clk.Now())
	assert.Equal(t, depth+1, len(e.undoStack))
}

func TestAnchorDrag(t *testing.T) {
	e, clk := newTestEditor()

	dragCreateCircle(e, clk, geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 260, Y: 240})
	c := e.Marks()[0].(*mark.CircleMark)

	// Hover near the anchor makes the handle visible.
	e.Handle(hover(geometry.Point2D{X: 103, Y: 98}))
	handle, ok := e.AnchorHandle()
	require.True(t, ok)
	assert.Equal(t, geometry.Point2D{X: 100, Y: 100}, handle)

	// Press on the handle, drag: the anchor follows the pointer.
	e.Handle(press(geometry.Point2D{X: 101, Y: 100}))
	e.Handle(move(geometry.Point2D{X: 150, Y: 300}))
	e.Handle(release(geometry.Point2D{X: 150, Y: 300}))

	assert.Equal(t, geometry.Point2D{X: 150, Y: 300}, c.Leader().Anchor)
	assert.InDelta(t, c.Radius, c.Center().Distance(c.Leader().End), 0.5)
}

func TestHoverMissesDistantAnchor(t *testing.T) {
	e, clk := newTestEditor()
	dragCreateCircle(e, clk, geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 260, Y: 240})

	e.Handle(hover(geometry.Point2D{X: 500, Y: 500}))
	_, ok := e.AnchorHandle()
	assert.False(t, ok)
}

func TestAnchorHandleRadiusScalesWithZoom(t *testing.T) {
	e, clk := newTestEditor()
	dragCreateCircle(e, clk, geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 260, Y: 240})

	// Zoomed in 4x the scene-space pickup radius shrinks to 2.5 units.
	e.zoom = 4.0
	e.Handle(hover(geometry.Point2D{X: 105, Y: 100}))
	_, ok := e.AnchorHandle()
	assert.False(t, ok)

	e.Handle(hover(geometry.Point2D{X: 101, Y: 100}))
	_, ok = e.AnchorHandle()
	assert.True(t, ok)
}

func TestViewZoomWheel(t *testing.T) {
	e, _ := newTestEditor()

	var reported float64
	e.OnZoomChanged(func(z float64) { reported = z })

	e.Handle(Intent{Kind: IntentWheel, Mods: ModShift, WheelDelta: 1})
	assert.InDelta(t, 1.15, e.Zoom(), 1e-9)
	assert.InDelta(t, 1.15, reported, 1e-9)

	e.Handle(Intent{Kind: IntentWheel, Mods: ModShift, WheelDelta: -1})
	assert.InDelta(t, 1.0, e.Zoom(), 1e-9)

	e.ResetView()
	assert.Equal(t, 1.0, e.Zoom())
}

func TestLoadDefectsLegacyStringID(t *testing.T) {
	e, _ := newTestEditor()

	e.LoadDefects(DefectSet{Items: []mark.Record{
		{Type: mark.TypeSquare, X: 100, Y: 100, Scale: 1, DisplayID: "D-7"},
		{Type: "UnknownMark", X: 1, Y: 2},
	}})

	// Unknown type dropped silently; legacy id participates in numbering.
	require.Len(t, e.Marks(), 1)
	assert.False(t, e.Dirty())

	e.SetTool(ToolCircle)
	e.Handle(doubleClick(geometry.Point2D{X: 500, Y: 500}))
	c := e.Marks()[1].(*mark.CircleMark)
	assert.Equal(t, 8, c.DisplayID)
}

func TestLoadDefectsRestoresLeaderAndInfo(t *testing.T) {
	e, _ := newTestEditor()

	info := mark.DefectInfo{Member: "Slab", Location: "B1"}
	e.LoadDefects(DefectSet{Items: []mark.Record{{
		Type: mark.TypeCircle, X: 200, Y: 200, Scale: 1.5,
		InternalID: "kept-id", DisplayID: 3, DefectInfo: &info,
		Line: &mark.LineRecord{P1: [2]float64{50, 50}, P2: [2]float64{190, 190}},
	}}})

	require.Len(t, e.Marks(), 1)
	c := e.Marks()[0].(*mark.CircleMark)
	assert.Equal(t, "kept-id", c.ID())
	assert.Equal(t, 3, c.DisplayID)
	assert.Equal(t, 1.5, c.Scale())
	assert.Equal(t, "Slab", c.Info.Member)
	require.NotNil(t, c.Leader())
	assert.Equal(t, geometry.Point2D{X: 50, Y: 50}, c.Leader().Anchor)
	// End recomputed onto the scaled boundary.
	assert.InDelta(t, c.Radius*1.5, c.Center().Distance(c.Leader().End), 0.5)

	// Loaded state is the baseline: no undo available.
	assert.False(t, e.CanUndo())
}

func TestSetDefectInfoRefreshesLabel(t *testing.T) {
	e, _ := newTestEditor()
	e.Handle(doubleClick(geometry.Point2D{X: 300, Y: 300}))
	c := e.Marks()[0].(*mark.CircleMark)

	e.ClearDirty()
	e.SetDefectInfo(c.ID(), mark.DefectInfo{Member: "Column", Progress: true})

	assert.Equal(t, "Column", c.Info.Member)
	assert.True(t, c.Info.Progress)
	require.NotNil(t, c.Label())
	assert.Equal(t, "Column", c.Label().Text)
	assert.True(t, e.Dirty())
}

func TestMemoSelectionToggle(t *testing.T) {
	e, _ := newTestEditor()
	e.SetTool(ToolMemoLine)
	e.Handle(press(geometry.Point2D{X: 100, Y: 100}))
	e.Handle(move(geometry.Point2D{X: 200, Y: 100}))
	e.Handle(release(geometry.Point2D{X: 200, Y: 100}))
	memo := e.Memos()[0]

	e.Handle(press(geometry.Point2D{X: 150, Y: 101}))
	assert.True(t, memo.Selected())

	// Ctrl-click toggles off.
	e.Handle(Intent{Kind: IntentPress, At: geometry.Point2D{X: 150, Y: 101}, Mods: ModCtrl})
	assert.False(t, memo.Selected())
}

func TestDeleteSelectedMemo(t *testing.T) {
	e, _ := newTestEditor()
	e.SetTool(ToolMemoLine)
	e.Handle(press(geometry.Point2D{X: 100, Y: 100}))
	e.Handle(move(geometry.Point2D{X: 200, Y: 100}))
	e.Handle(release(geometry.Point2D{X: 200, Y: 100}))

	e.Memos()[0].SetSelected(true)
	e.DeleteSelected()
	assert.Empty(t, e.Memos())
}

func TestSaveFlowResetsBaseline(t *testing.T) {
	e, clk := newTestEditor()
	dragCreateCircle(e, clk, geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 260, Y: 240})
	require.True(t, e.CanUndo())

	ds := e.Defects()
	require.Len(t, ds.Items, 1)

	e.ResetBaseline()
	e.ClearDirty()

	assert.False(t, e.CanUndo())
	assert.False(t, e.Dirty())
}

func TestLoadSnapshotRestoresScene(t *testing.T) {
	e, clk := newTestEditor()
	dragCreateCircle(e, clk, geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 260, Y: 240})
	e.SetTool(ToolMemoLine)
	e.Handle(press(geometry.Point2D{X: 400, Y: 400}))
	e.Handle(move(geometry.Point2D{X: 600, Y: 450}))
	e.Handle(release(geometry.Point2D{X: 600, Y: 450}))
	snap := e.MakeSnapshot()
	require.Len(t, snap.Items, 1)
	require.Len(t, snap.Memos, 1)

	e2, _ := newTestEditor()
	e2.LoadSnapshot(snap)

	require.Len(t, e2.Marks(), 1)
	require.Len(t, e2.Memos(), 1)
	assert.False(t, e2.Dirty())
	assert.False(t, e2.CanUndo())
	assert.True(t, snap.Equal(e2.MakeSnapshot()))
}

func TestSetLabelText(t *testing.T) {
	e, _ := newTestEditor()
	e.Handle(doubleClick(geometry.Point2D{X: 300, Y: 300}))
	c := e.Marks()[0].(*mark.CircleMark)

	e.ClearDirty()
	e.SetLabelText(c.ID(), "leak under window")
	require.NotNil(t, c.Label())
	assert.Equal(t, "leak under window", c.Label().Text)
	assert.True(t, e.Dirty())

	e.SetLabelText(c.ID(), "")
	assert.Nil(t, c.Label())

	e.SetTool(ToolText)
	e.Handle(doubleClick(geometry.Point2D{X: 500, Y: 500}))
	var note *mark.NoteText
	for _, m := range e.Marks() {
		if n, ok := m.(*mark.NoteText); ok {
			note = n
		}
	}
	require.NotNil(t, note)
	e.SetLabelText(note.ID(), "check on next visit")
	assert.Equal(t, "check on next visit", note.Text)
}

func TestAreaSelectBand(t *testing.T) {
	e, _ := newTestEditor()
	e.Handle(doubleClick(geometry.Point2D{X: 100, Y: 100}))
	e.Handle(doubleClick(geometry.Point2D{X: 600, Y: 600}))
	e.ClearDirty()

	e.SetEditMode(ModeAreaSelect)
	e.Handle(press(geometry.Point2D{X: 50, Y: 50}))
	e.Handle(move(geometry.Point2D{X: 400, Y: 400}))

	band, active := e.BandRect()
	require.True(t, active)
	assert.Equal(t, geometry.Point2D{X: 50, Y: 50}, geometry.Point2D{X: band.X, Y: band.Y})

	e.Handle(release(geometry.Point2D{X: 700, Y: 700}))
	assert.Len(t, e.SelectedMarks(), 2)
	_, active = e.BandRect()
	assert.False(t, active)

	// Selection is not a document change.
	assert.False(t, e.Dirty())

	// A fresh band replaces the previous selection, even when the press
	// lands directly on a mark.
	e.Handle(press(geometry.Point2D{X: 100, Y: 100}))
	e.Handle(move(geometry.Point2D{X: 140, Y: 140}))
	e.Handle(release(geometry.Point2D{X: 140, Y: 140}))
	require.Len(t, e.SelectedMarks(), 1)
	assert.Equal(t, geometry.Point2D{X: 100, Y: 100}, e.SelectedMarks()[0].(*mark.CircleMark).Center())
}

func TestAreaSelectCtrlExtends(t *testing.T) {
	e, _ := newTestEditor()
	e.Handle(doubleClick(geometry.Point2D{X: 100, Y: 100}))
	e.Handle(doubleClick(geometry.Point2D{X: 600, Y: 600}))
	e.SetEditMode(ModeAreaSelect)

	e.Handle(press(geometry.Point2D{X: 50, Y: 50}))
	e.Handle(release(geometry.Point2D{X: 150, Y: 150}))
	require.Len(t, e.SelectedMarks(), 1)

	e.Handle(Intent{Kind: IntentPress, At: geometry.Point2D{X: 550, Y: 550}, Mods: ModCtrl})
	e.Handle(release(geometry.Point2D{X: 650, Y: 650}))
	assert.Len(t, e.SelectedMarks(), 2)
}

func TestAreaSelectPicksMemos(t *testing.T) {
	e, _ := newTestEditor()
	e.SetTool(ToolMemoLine)
	e.Handle(press(geometry.Point2D{X: 100, Y: 100}))
	e.Handle(move(geometry.Point2D{X: 200, Y: 100}))
	e.Handle(release(geometry.Point2D{X: 200, Y: 100}))
	memo := e.Memos()[0]

	e.SetEditMode(ModeAreaSelect)
	e.Handle(press(geometry.Point2D{X: 50, Y: 50}))
	e.Handle(release(geometry.Point2D{X: 250, Y: 150}))
	assert.True(t, memo.Selected())
}

func TestClickSelectStaysSaved(t *testing.T) {
	e, clk := newTestEditor()
	dragCreateCircle(e, clk, geometry.Point2D{X: 100, Y: 100}, geometry.Point2D{X: 240, Y: 220})
	e.ResetBaseline()
	e.ClearDirty()

	// A plain click on the mark selects without touching the document.
	e.Handle(press(geometry.Point2D{X: 240, Y: 220}))
	e.Handle(release(geometry.Point2D{X: 240, Y: 220}))
	require.Len(t, e.SelectedMarks(), 1)
	assert.False(t, e.Dirty())

	// An actual displacement does count.
	e.Handle(press(geometry.Point2D{X: 240, Y: 220}))
	e.Handle(move(geometry.Point2D{X: 280, Y: 250}))
	e.Handle(release(geometry.Point2D{X: 280, Y: 250}))
	assert.True(t, e.Dirty())
}

func TestWheelScaleHonorsConfiguredBounds(t *testing.T) {
	tun := config.GetTuning()
	tun.MarkScaleMin = 0.9
	tun.MarkScaleMax = 4.0
	e := NewEditor(tun, zerolog.Nop())
	clk := &manualClock{t: time.Unix(1000, 0)}
	e.SetClock(clk)
	e.SetImage("plan.png", geometry.NewSize(2000, 1500))
	e.ResetBaseline()

	e.Handle(doubleClick(geometry.Point2D{X: 300, Y: 300}))
	c := e.Marks()[0].(*mark.CircleMark)
	e.SelectOnly(c)

	for i := 0; i < 40; i++ {
		e.Handle(Intent{Kind: IntentWheel, Mods: ModCtrl, WheelDelta: 1})
	}
	assert.Equal(t, 4.0, c.Scale())

	for i := 0; i < 40; i++ {
		e.Handle(Intent{Kind: IntentWheel, Mods: ModCtrl, WheelDelta: -1})
	}
	assert.Equal(t, 0.9, c.Scale())

	// Persisted records clamp at the same bounds on restore.
	snap := e.MakeSnapshot()
	snap.Items[0].Scale = 9.0
	e.LoadSnapshot(snap)
	assert.Equal(t, 4.0, e.Marks()[0].Scale())
}
