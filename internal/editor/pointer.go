package editor

import (
	"math"
	"time"

	"plan-marker/internal/mark"
	"plan-marker/pkg/geometry"
)

// Handle consumes one pointer intent and advances the drag state machine.
func (e *Editor) Handle(in Intent) {
	switch in.Kind {
	case IntentPress:
		e.handlePress(in)
	case IntentMove:
		e.handleMove(in)
	case IntentRelease:
		e.handleRelease(in)
	case IntentDoubleClick:
		e.handleDoubleClick(in)
	case IntentHover:
		e.handleHover(in)
	case IntentWheel:
		e.handleWheel(in)
	}
}

// Tick fires any expired deadline. The UI loop calls this on every frame;
// tests call it with a manual clock.
func (e *Editor) Tick(now time.Time) {
	if !e.pressDeadline.IsZero() && !now.Before(e.pressDeadline) {
		e.pressDeadline = time.Time{}
		e.beginDragCreate()
	}
	if !e.editEndDeadline.IsZero() && !now.Before(e.editEndDeadline) {
		e.editEndDeadline = time.Time{}
		e.endEdit()
	}
}

func (e *Editor) cancelPressTimer() {
	e.pressDeadline = time.Time{}
	e.pressing = false
	e.pendingPress = geometry.Point2D{}
}

func (e *Editor) resetDrag() {
	e.dragMode = DragNone
	e.dragMarkID = ""
	e.dragMemo = nil
	e.pressPos = geometry.Point2D{}
	e.bandEnd = geometry.Point2D{}
	e.dragMoved = false
	e.cancelPressTimer()
}

func (e *Editor) handlePress(in Intent) {
	if !e.hasImage {
		return
	}
	p := in.At

	// Area-select mode turns every press into a rubber-band drag; the band
	// decides selection on release.
	if e.mode == ModeAreaSelect {
		if in.Mods&(ModCtrl|ModShift) == 0 {
			e.ClearSelection()
		}
		e.dragMode = DragBand
		e.pressPos = p
		e.bandEnd = p
		return
	}

	// Anchor handle takes priority over everything under it.
	if e.hoverAnchorID != "" {
		if anchor, ok := e.AnchorHandle(); ok {
			radius := e.sceneDistFromViewPx(e.tun.AnchorHandleRadius)
			if p.Distance(anchor) <= radius {
				e.beginEdit()
				e.dragMode = DragMoveAnchor
				e.dragMarkID = e.hoverAnchorID
				return
			}
		}
	}

	// Memo strokes get plain selection handling and never start drags.
	if e.findShapeAt(p) == nil {
		if memo := e.findMemoAt(p); memo != nil {
			if in.Mods&(ModCtrl|ModShift) == 0 {
				e.ClearSelection()
				memo.SetSelected(true)
			} else {
				memo.SetSelected(!memo.Selected())
			}
			return
		}
	}

	hit := e.findShapeAt(p)
	e.ClearSelection()

	if hit != nil {
		hit.SetSelected(true)
		e.beginEdit()
		e.dragMode = DragMove
		e.dragMarkID = hit.ID()
		e.grabOffset = hit.Center().Sub(p)
		return
	}

	switch e.tool {
	case ToolMemoLine:
		e.cancelPressTimer()
		e.beginEdit()
		e.dragMode = DragCreate
		e.pressPos = p
		memo := mark.NewMemoLine(p, p)
		e.memos = append(e.memos, memo)
		e.dragMemo = memo
		return
	case ToolMemoFree:
		e.cancelPressTimer()
		e.beginEdit()
		e.dragMode = DragCreate
		e.pressPos = p
		memo := mark.NewMemoFreePath(p)
		e.memos = append(e.memos, memo)
		e.dragMemo = memo
		return
	}

	// Circle creation waits for the press-hold timer; quick releases stay
	// reserved for double-click creation.
	e.pressing = true
	e.pendingPress = p
	e.pressDeadline = e.clock.Now().Add(e.tun.PressHoldDelay)
}

// beginDragCreate runs when the press-hold timer fires while still pressed:
// it enters CREATE with a hidden circle anchored at the press point.
func (e *Editor) beginDragCreate() {
	if e.tool != ToolCircle {
		return
	}
	if e.dragMode != DragNone || e.mode != ModeSelect {
		return
	}
	if !e.pressing {
		return
	}

	e.beginEdit()

	p := e.pendingPress
	e.pressing = false
	e.pendingPress = geometry.Point2D{}

	c := mark.NewCircleMark(p)
	c.SetVisible(false)
	e.addMark(c)

	// Show the eventual id during the drag without consuming it yet.
	c.SetDisplayID(e.nextDefectIndex)

	mark.BeginAttach(c, p)

	e.dragMode = DragCreate
	e.pressPos = p
	e.dragMarkID = c.ID()
}

func (e *Editor) handleMove(in Intent) {
	if e.dragMode == DragNone {
		return
	}
	p := in.At

	switch e.dragMode {
	case DragBand:
		e.bandEnd = p

	case DragMoveAnchor:
		if m, ok := e.marks[e.dragMarkID]; ok {
			mark.MoveAnchor(m, p)
			e.hoverAnchorID = e.dragMarkID
			e.dragMoved = true
		}

	case DragMove:
		if m, ok := e.marks[e.dragMarkID]; ok {
			mark.MoveTo(m, p.Add(e.grabOffset))
			e.dragMoved = true
		}

	case DragCreate:
		switch memo := e.dragMemo.(type) {
		case *mark.MemoLine:
			memo.P2 = p
			return
		case *mark.MemoFreePath:
			memo.AddPoint(p)
			return
		}

		if m, ok := e.marks[e.dragMarkID]; ok {
			m.SetVisible(true)
			mark.MoveTo(m, p)
		}
	}
}

func (e *Editor) handleRelease(in Intent) {
	p := in.At

	// Rubber-band release selects everything the band touches. Selection is
	// not a document change; the undo stack stays put.
	if e.dragMode == DragBand {
		band := geometry.RectBetween(e.pressPos, p)
		for _, id := range e.order {
			if m := e.marks[id]; band.Intersects(m.Bounds()) {
				m.SetSelected(true)
			}
		}
		for _, memo := range e.memos {
			if band.Intersects(memo.Bounds()) {
				memo.SetSelected(true)
			}
		}
		e.resetDrag()
		return
	}

	// Undersized memo strokes are discarded, not committed.
	if line, ok := e.dragMemo.(*mark.MemoLine); ok {
		if line.Length() < e.tun.MinMemoLineLength {
			e.removeMemo(line)
			e.endEdit()
			e.resetDrag()
			return
		}
	}
	if path, ok := e.dragMemo.(*mark.MemoFreePath); ok {
		b := path.Bounds()
		if b.Width < e.tun.MinFreePathExtent && b.Height < e.tun.MinFreePathExtent {
			e.removeMemo(path)
			e.endEdit()
			e.resetDrag()
			return
		}
	}

	if e.dragMode == DragMove || e.dragMode == DragMoveAnchor {
		if m, ok := e.marks[e.dragMarkID]; ok && e.dragMode == DragMove {
			mark.SyncLeader(m)
		}
		e.editEndDeadline = e.clock.Now().Add(e.tun.EditCoalesceDelay)
		moved := e.dragMoved
		e.dragMode = DragNone
		e.dragMarkID = ""
		e.dragMoved = false
		// A click-to-select never displaces anything; only real movement
		// counts as an unsaved change.
		if moved {
			e.markDirty()
		}
		return
	}

	e.cancelPressTimer()

	if e.dragMode == DragCreate && e.dragMemo != nil {
		e.endEdit()
		e.resetDrag()
		e.markDirty()
		return
	}

	if e.dragMode == DragCreate && e.dragMarkID != "" {
		m, ok := e.marks[e.dragMarkID]
		if !ok {
			e.resetDrag()
			return
		}

		straight := e.pressPos.Distance(p)
		if _, isText := m.(*mark.NoteText); !isText {
			if straight < e.minCreateDistance(m) {
				mark.CancelLeader(m)
				e.removeMark(m.ID())
				e.abortEdit()
				e.resetDrag()
				return
			}
		}

		if !e.canCreateAtExcluding(e.pressPos, m.ID()) {
			mark.CancelLeader(m)
			e.removeMark(m.ID())
			e.abortEdit()
			e.resetDrag()
			return
		}

		m.SetVisible(true)
		mark.MoveTo(m, p)
		mark.ConfirmLeader(m)
		e.initDefect(m)

		e.endEdit()
		e.markDirty()
		e.resetDrag()
	}
}

// canCreateAtExcluding is the placement guard for drag-creation commit: the
// in-flight mark itself must not block its own placement.
func (e *Editor) canCreateAtExcluding(p geometry.Point2D, exclude string) bool {
	for i := len(e.order) - 1; i >= 0; i-- {
		id := e.order[i]
		if id == exclude {
			continue
		}
		m := e.marks[id]
		if m.Visible() && m.Contains(p) {
			return false
		}
	}
	return true
}

func (e *Editor) removeMemo(target mark.Memo) {
	for i, mm := range e.memos {
		if mm == target {
			e.memos = append(e.memos[:i], e.memos[i+1:]...)
			return
		}
	}
}

func (e *Editor) handleDoubleClick(in Intent) {
	e.cancelPressTimer()

	p := in.At
	if !e.hasImage {
		return
	}

	// Double-click on an existing mark routes to label edit or the defect
	// detail panel rather than creation.
	if hit := e.findShapeAt(p); hit != nil {
		if lo, ok := hit.(mark.LabelOwner); ok {
			if l := lo.Label(); l != nil && l.Contains(p) {
				if e.onEditLabel != nil {
					e.onEditLabel(hit)
				}
				return
			}
		}
		switch v := hit.(type) {
		case *mark.CircleMark:
			e.SelectOnly(v)
			if e.onOpenDetail != nil {
				e.onOpenDetail(v)
			}
		case *mark.NoteText:
			if e.onEditLabel != nil {
				e.onEditLabel(v)
			}
		}
		return
	}

	if !e.tool.isBasicShape() || e.mode != ModeSelect {
		return
	}
	if !e.canCreateAt(p) {
		return
	}

	m := newMarkForTool(e.tool, p)
	if m == nil {
		return
	}

	e.beginEdit()
	e.addMark(m)
	e.initDefect(m)
	m.SetSelected(true)
	e.endEdit()
	e.markDirty()
}

func (e *Editor) handleHover(in Intent) {
	if e.dragMode != DragNone {
		return
	}

	radius := e.sceneDistFromViewPx(e.tun.AnchorHandleRadius)
	bestDist := math.Inf(1)
	bestID := ""

	for _, id := range e.order {
		owner, ok := e.marks[id].(mark.LeaderLineOwner)
		if !ok || owner.Leader() == nil {
			continue
		}
		d := in.At.Distance(owner.Leader().Anchor)
		if d < radius && d < bestDist {
			bestDist = d
			bestID = id
		}
	}
	e.hoverAnchorID = bestID
}

func (e *Editor) handleWheel(in Intent) {
	// Ctrl+wheel scales the selected marks, coalesced into one undo step.
	if in.Mods&ModCtrl != 0 {
		selected := e.SelectedMarks()
		if len(selected) == 0 {
			return
		}

		factor := e.tun.MarkScaleStep
		if in.WheelDelta < 0 {
			factor = 1 / factor
		}

		if !e.editing {
			e.beginEdit()
		}
		for _, m := range selected {
			mark.Rescale(m, e.clampScale(m.Scale()*factor))
		}
		e.editEndDeadline = e.clock.Now().Add(e.tun.EditCoalesceDelay)
		return
	}

	// Shift+wheel zooms the view.
	if in.Mods&ModShift != 0 {
		factor := e.tun.ViewZoomStep
		if in.WheelDelta < 0 {
			factor = 1 / factor
		}
		e.zoom *= factor
		if e.onZoomChanged != nil {
			e.onZoomChanged(e.zoom)
		}
	}
}
