package editor

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"plan-marker/internal/config"
	"plan-marker/internal/mark"
	"plan-marker/pkg/geometry"
)

// Editor owns the annotation scene for one (sub-part, inspection) edit
// session: the background image reference, the mark arena, memo strokes,
// selection, the drag state machine, and undo/redo history. All mutation is
// synchronous on the UI loop; there is no internal locking.
type Editor struct {
	tun   config.Tuning
	log   zerolog.Logger
	clock Clock

	imagePath string
	imageSize geometry.Size
	hasImage  bool

	marks map[string]mark.Mark
	order []string
	memos []mark.Memo

	tool Tool
	mode EditMode
	zoom float64

	nextDefectIndex int

	dragMode   DragMode
	dragMarkID string
	dragMemo   mark.Memo
	pressPos   geometry.Point2D
	grabOffset geometry.Point2D
	bandEnd    geometry.Point2D
	dragMoved  bool

	pressing     bool
	pendingPress geometry.Point2D

	// Deadline scheduling; zero time means unarmed. Fired by Tick.
	pressDeadline   time.Time
	editEndDeadline time.Time

	editing   bool
	undoBlock bool
	undoStack []Snapshot
	redoStack []Snapshot

	dirty bool

	hoverAnchorID string

	onDirty       func()
	onZoomChanged func(float64)
	onOpenDetail  func(*mark.CircleMark)
	onEditLabel   func(mark.Mark)
	onImageReload func(string)
}

// NewEditor creates an empty editor with the given tuning.
func NewEditor(tun config.Tuning, log zerolog.Logger) *Editor {
	return &Editor{
		tun:             tun,
		log:             log,
		clock:           systemClock{},
		marks:           make(map[string]mark.Mark),
		tool:            ToolCircle,
		mode:            ModeSelect,
		zoom:            1.0,
		nextDefectIndex: 1,
	}
}

// SetClock replaces the time source; tests drive deadlines manually.
func (e *Editor) SetClock(c Clock) { e.clock = c }

// OnDirty sets the callback invoked when the scene gains unsaved changes.
func (e *Editor) OnDirty(fn func()) { e.onDirty = fn }

// OnZoomChanged sets the callback invoked when the view zoom changes.
func (e *Editor) OnZoomChanged(fn func(float64)) { e.onZoomChanged = fn }

// OnOpenDetail sets the callback invoked when a circle body is
// double-clicked to open the defect detail panel.
func (e *Editor) OnOpenDetail(fn func(*mark.CircleMark)) { e.onOpenDetail = fn }

// OnEditLabel sets the callback invoked when a mark's label is
// double-clicked for inline editing.
func (e *Editor) OnEditLabel(fn func(mark.Mark)) { e.onEditLabel = fn }

// OnImageReload sets the callback invoked when a snapshot restore needs the
// background image re-displayed.
func (e *Editor) OnImageReload(fn func(string)) { e.onImageReload = fn }

// Tool returns the active creation tool.
func (e *Editor) Tool() Tool { return e.tool }

// SetTool selects the creation tool.
func (e *Editor) SetTool(t Tool) { e.tool = t }

// EditMode returns the active edit mode.
func (e *Editor) EditMode() EditMode { return e.mode }

// SetEditMode switches between single and rubber-band selection.
func (e *Editor) SetEditMode(m EditMode) {
	if e.mode == m {
		return
	}
	e.mode = m
	e.resetDrag()
}

// Dragging reports whether a pointer interaction is in flight: an active
// drag or a press still waiting on the hold timer.
func (e *Editor) Dragging() bool { return e.dragMode != DragNone || e.pressing }

// Zoom returns the current view scale.
func (e *Editor) Zoom() float64 { return e.zoom }

// clampScale saturates a mark scale at the configured bounds.
func (e *Editor) clampScale(s float64) float64 {
	if s < e.tun.MarkScaleMin {
		return e.tun.MarkScaleMin
	}
	if s > e.tun.MarkScaleMax {
		return e.tun.MarkScaleMax
	}
	return s
}

// ResetView restores 1:1 zoom.
func (e *Editor) ResetView() {
	e.zoom = 1.0
	if e.onZoomChanged != nil {
		e.onZoomChanged(e.zoom)
	}
}

// ImagePath returns the background image path, empty when none is loaded.
func (e *Editor) ImagePath() string { return e.imagePath }

// ImageSize returns the background image extent in scene units.
func (e *Editor) ImageSize() geometry.Size { return e.imageSize }

// SetImage clears the scene wholesale and installs a new background image.
func (e *Editor) SetImage(path string, size geometry.Size) {
	e.clearScene()
	e.imagePath = path
	e.imageSize = size
	e.hasImage = path != ""
	e.log.Debug().Str("path", path).Msg("background image set")
}

func (e *Editor) clearScene() {
	e.marks = make(map[string]mark.Mark)
	e.order = nil
	e.memos = nil
	e.hoverAnchorID = ""
	e.resetDrag()
}

// Marks returns the marks in z-order, bottom first.
func (e *Editor) Marks() []mark.Mark {
	out := make([]mark.Mark, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.marks[id])
	}
	return out
}

// Memos returns the memo strokes in creation order.
func (e *Editor) Memos() []mark.Memo { return e.memos }

// MarkByID looks up a mark in the arena.
func (e *Editor) MarkByID(id string) (mark.Mark, bool) {
	m, ok := e.marks[id]
	return m, ok
}

// Dirty reports whether unsaved changes exist.
func (e *Editor) Dirty() bool { return e.dirty }

// ClearDirty resets the unsaved-changes flag, e.g. after a save.
func (e *Editor) ClearDirty() { e.dirty = false }

func (e *Editor) markDirty() {
	e.dirty = true
	if e.onDirty != nil {
		e.onDirty()
	}
}

func (e *Editor) addMark(m mark.Mark) {
	if m.ID() == "" {
		if setter, ok := m.(interface{ SetID(string) }); ok {
			setter.SetID(uuid.NewString())
		}
	}
	m.SetChangeSink(e.markDirty)
	e.marks[m.ID()] = m
	e.order = append(e.order, m.ID())
}

func (e *Editor) removeMark(id string) {
	if _, ok := e.marks[id]; !ok {
		return
	}
	delete(e.marks, id)
	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// SelectedMarks returns the marks currently selected, bottom first.
func (e *Editor) SelectedMarks() []mark.Mark {
	var out []mark.Mark
	for _, id := range e.order {
		if m := e.marks[id]; m.Selected() {
			out = append(out, m)
		}
	}
	return out
}

// ClearSelection deselects every mark and memo.
func (e *Editor) ClearSelection() {
	for _, m := range e.marks {
		m.SetSelected(false)
	}
	for _, mm := range e.memos {
		mm.SetSelected(false)
	}
}

// SelectOnly makes m the sole selection.
func (e *Editor) SelectOnly(m mark.Mark) {
	e.ClearSelection()
	m.SetSelected(true)
}

// HasSelection reports whether any mark or memo is selected.
func (e *Editor) HasSelection() bool {
	for _, m := range e.marks {
		if m.Selected() {
			return true
		}
	}
	for _, mm := range e.memos {
		if mm.Selected() {
			return true
		}
	}
	return false
}

// findShapeAt returns the topmost mark whose body contains the point.
func (e *Editor) findShapeAt(p geometry.Point2D) mark.Mark {
	for i := len(e.order) - 1; i >= 0; i-- {
		m := e.marks[e.order[i]]
		if !m.Visible() {
			continue
		}
		if m.Contains(p) {
			return m
		}
		if lo, ok := m.(mark.LabelOwner); ok {
			if l := lo.Label(); l != nil && l.Contains(p) {
				return m
			}
		}
	}
	return nil
}

// findMemoAt returns the topmost memo stroke within hit width of the point.
func (e *Editor) findMemoAt(p geometry.Point2D) mark.Memo {
	for i := len(e.memos) - 1; i >= 0; i-- {
		if e.memos[i].Hit(p, e.tun.MemoStrokeHitWidth) {
			return e.memos[i]
		}
	}
	return nil
}

// canCreateAt rejects placement over any existing mark.
func (e *Editor) canCreateAt(p geometry.Point2D) bool {
	return e.findShapeAt(p) == nil
}

// sceneDistFromViewPx converts a screen-pixel radius to scene units at the
// current zoom.
func (e *Editor) sceneDistFromViewPx(px float64) float64 {
	if e.zoom <= 0 {
		return px
	}
	return px / e.zoom
}

// AnchorHandle returns the hovered leader anchor position, if any.
func (e *Editor) AnchorHandle() (geometry.Point2D, bool) {
	m, ok := e.marks[e.hoverAnchorID]
	if !ok {
		return geometry.Point2D{}, false
	}
	owner, ok := m.(mark.LeaderLineOwner)
	if !ok || owner.Leader() == nil {
		return geometry.Point2D{}, false
	}
	return owner.Leader().Anchor, true
}

// BandRect returns the in-progress rubber-band rectangle while an
// area-select drag is active.
func (e *Editor) BandRect() (geometry.Rect, bool) {
	if e.dragMode != DragBand {
		return geometry.Rect{}, false
	}
	return geometry.RectBetween(e.pressPos, e.bandEnd), true
}

// initDefect assigns the stable internal id and, for circles, the sequential
// display id plus a fresh defect record and label.
func (e *Editor) initDefect(m mark.Mark) {
	if setter, ok := m.(interface{ SetID(string) }); ok && m.ID() == "" {
		setter.SetID(uuid.NewString())
	}

	c, ok := m.(*mark.CircleMark)
	if !ok {
		return
	}
	c.SetDisplayID(e.nextDefectIndex)
	e.nextDefectIndex++

	c.Info = mark.NewDefectInfo()
	c.EnableLabel(c.Info.Member)
	mark.SyncLabel(c)
}

// renumberCircles reassigns circle display ids densely 1..N, in ascending
// order of their previous ids.
func (e *Editor) renumberCircles() {
	var circles []*mark.CircleMark
	for _, id := range e.order {
		if c, ok := e.marks[id].(*mark.CircleMark); ok && c.DisplayID != 0 {
			circles = append(circles, c)
		}
	}
	sort.SliceStable(circles, func(i, j int) bool {
		return circles[i].DisplayID < circles[j].DisplayID
	})
	for i, c := range circles {
		if c.DisplayID != i+1 {
			c.SetDisplayID(i + 1)
		}
	}
}

// calcNextDefectIndex derives the next display id from the scene, tolerating
// legacy string ids by their numeric tail.
func (e *Editor) calcNextDefectIndex() int {
	maxN := 0
	for _, id := range e.order {
		var did any
		switch m := e.marks[id].(type) {
		case *mark.CircleMark:
			if m.DisplayID != 0 {
				did = m.DisplayID
			}
		case *mark.SquareMark:
			did = m.LegacyID
		case *mark.TriangleMark:
			did = m.LegacyID
		case *mark.SCurveMark:
			did = m.LegacyID
		}
		if n, ok := mark.DisplayIDNumber(did); ok && n > maxN {
			maxN = n
		}
	}
	return maxN + 1
}

// DeleteSelected removes every selected mark and memo, renumbers circles,
// and recalculates the next display id.
func (e *Editor) DeleteSelected() {
	if !e.HasSelection() {
		return
	}

	e.beginEdit()

	for _, id := range append([]string(nil), e.order...) {
		if e.marks[id].Selected() {
			e.removeMark(id)
		}
	}
	kept := e.memos[:0]
	for _, mm := range e.memos {
		if !mm.Selected() {
			kept = append(kept, mm)
		}
	}
	e.memos = kept

	e.renumberCircles()
	e.nextDefectIndex = e.calcNextDefectIndex()

	e.ClearSelection()
	e.endEdit()
	e.markDirty()
}

// SetDefectInfo commits detail-panel edits into a circle's record and
// refreshes its label. Edits apply immediately; there is no separate apply
// step.
func (e *Editor) SetDefectInfo(id string, info mark.DefectInfo) {
	m, ok := e.marks[id]
	if !ok {
		return
	}
	c, ok := m.(*mark.CircleMark)
	if !ok {
		return
	}
	c.Info = info
	c.EnableLabel(info.Member)
	mark.SyncLabel(c)
	e.markDirty()
}

// SetLabelText commits a label-edit result onto a mark. Text notes change
// their body text; other marks change their attached label, an empty string
// removing it.
func (e *Editor) SetLabelText(id, text string) {
	m, ok := e.marks[id]
	if !ok {
		return
	}
	if n, ok := m.(*mark.NoteText); ok {
		n.SetText(text)
		e.markDirty()
		return
	}
	if owner, ok := m.(mark.LabelOwner); ok {
		if text == "" {
			owner.DisableLabel()
		} else {
			owner.EnableLabel(text)
			mark.SyncLabel(m)
		}
		e.markDirty()
	}
}

// newMarkForTool builds the mark a double-click creation produces.
func newMarkForTool(t Tool, p geometry.Point2D) mark.Mark {
	switch t {
	case ToolCircle:
		return mark.NewCircleMark(p)
	case ToolSquare:
		return mark.NewSquareMark(p)
	case ToolTriangle:
		return mark.NewTriangleMark(p)
	case ToolSCurve:
		return mark.NewSCurveMark(p)
	case ToolText:
		return mark.NewNoteText(p, "")
	}
	return nil
}

// minCreateDistance is the smallest press-to-release displacement a drag
// creation must cover: the mark's larger extent plus slack.
func (e *Editor) minCreateDistance(m mark.Mark) float64 {
	b := m.Bounds()
	base := b.Width
	if b.Height > base {
		base = b.Height
	}
	return base + e.tun.DragCreateSlack
}
