package editor

import (
	"reflect"

	"plan-marker/internal/mark"
	"plan-marker/pkg/geometry"
)

const snapshotVersion = 1

// DefectSet is the persisted defect collection harvested on save. Memo
// strokes are deliberately absent: they round-trip only through snapshots.
type DefectSet struct {
	Items []mark.Record `json:"items"`
}

// Snapshot is a full capture of canvas contents used for undo/redo.
type Snapshot struct {
	Image   string            `json:"image"`
	Items   []mark.Record     `json:"items"`
	Memos   []mark.MemoRecord `json:"memos"`
	Version int               `json:"__version__"`
}

// Equal compares snapshots structurally; used to collapse no-op edit
// sessions.
func (s Snapshot) Equal(other Snapshot) bool {
	return reflect.DeepEqual(s, other)
}

// Defects harvests the current item list, the save contract's payload.
func (e *Editor) Defects() DefectSet {
	items := make([]mark.Record, 0, len(e.order))
	for _, id := range e.order {
		items = append(items, e.marks[id].Record())
	}
	return DefectSet{Items: items}
}

// MakeSnapshot captures the whole scene: item records plus memo strokes.
func (e *Editor) MakeSnapshot() Snapshot {
	snap := Snapshot{
		Image:   e.imagePath,
		Items:   e.Defects().Items,
		Version: snapshotVersion,
	}
	for _, mm := range e.memos {
		snap.Memos = append(snap.Memos, mm.MemoRecord())
	}
	return snap
}

// beginEdit opens an edit session. No-op during undo/redo replay.
func (e *Editor) beginEdit() {
	if e.undoBlock {
		return
	}
	e.editing = true
}

// endEdit closes the session and pushes a snapshot if the scene actually
// changed. Any new push invalidates the redo stack.
func (e *Editor) endEdit() {
	if e.undoBlock || !e.editing {
		return
	}

	snap := e.MakeSnapshot()
	if len(e.undoStack) == 0 || !e.undoStack[len(e.undoStack)-1].Equal(snap) {
		e.undoStack = append(e.undoStack, snap)
		e.redoStack = nil
		e.markDirty()
	}
	e.editing = false
}

// abortEdit closes the session without touching the undo stack; used when a
// creation gesture is discarded.
func (e *Editor) abortEdit() {
	e.editing = false
}

// CanUndo reports whether an undo step is available. The oldest entry is the
// baseline and is never popped.
func (e *Editor) CanUndo() bool { return len(e.undoStack) >= 2 }

// CanRedo reports whether a redo step is available.
func (e *Editor) CanRedo() bool { return len(e.redoStack) > 0 }

// Undo restores the previous snapshot. Underflow is silently ignored.
func (e *Editor) Undo() {
	if !e.CanUndo() {
		return
	}

	e.undoBlock = true
	current := e.undoStack[len(e.undoStack)-1]
	e.undoStack = e.undoStack[:len(e.undoStack)-1]
	e.redoStack = append(e.redoStack, current)

	e.restoreSnapshot(e.undoStack[len(e.undoStack)-1])
	e.undoBlock = false
	e.markDirty()
}

// Redo re-applies the most recently undone snapshot.
func (e *Editor) Redo() {
	if !e.CanRedo() {
		return
	}

	e.undoBlock = true
	snap := e.redoStack[len(e.redoStack)-1]
	e.redoStack = e.redoStack[:len(e.redoStack)-1]
	e.undoStack = append(e.undoStack, snap)

	e.restoreSnapshot(snap)
	e.undoBlock = false
	e.markDirty()
}

// restoreSnapshot tears the scene down and rebuilds it wholesale from the
// snapshot. O(scene size), acceptable for the tens of marks a plan carries.
func (e *Editor) restoreSnapshot(snap Snapshot) {
	image := snap.Image
	if image == "" {
		image = e.imagePath
	}
	e.SetImage(image, e.imageSize)
	if e.onImageReload != nil {
		e.onImageReload(image)
	}

	for _, rec := range snap.Items {
		e.restoreItem(rec)
	}
	for _, mrec := range snap.Memos {
		if mm := mark.MemoFromRecord(mrec); mm != nil {
			e.memos = append(e.memos, mm)
		}
	}

	e.nextDefectIndex = e.calcNextDefectIndex()
}

// restoreItem rebuilds one mark from its record. Unknown types are dropped
// silently so old or corrupt data degrades to partial recovery.
func (e *Editor) restoreItem(rec mark.Record) {
	m, ok := mark.FromRecord(rec)
	if !ok {
		return
	}

	if rec.Scale > 0 {
		m.SetScale(e.clampScale(rec.Scale))
	}
	m.SetRotation(rec.Rotation)
	if setter, ok := m.(interface{ SetID(string) }); ok && rec.InternalID != "" {
		setter.SetID(rec.InternalID)
	}

	switch v := m.(type) {
	case *mark.CircleMark:
		if n, ok := mark.DisplayIDNumber(rec.DisplayID); ok {
			v.DisplayID = n
		}
		if rec.DefectInfo != nil {
			v.Info = *rec.DefectInfo
		}
		v.EnableLabel(v.Info.Member)
	case *mark.SquareMark:
		if s, ok := rec.DisplayID.(string); ok {
			v.LegacyID = s
			v.EnableLabel(s)
		}
	case *mark.TriangleMark:
		if s, ok := rec.DisplayID.(string); ok {
			v.LegacyID = s
			v.EnableLabel(s)
		}
	case *mark.SCurveMark:
		if s, ok := rec.DisplayID.(string); ok {
			v.LegacyID = s
			v.EnableLabel(s)
		}
	}

	e.addMark(m)

	if rec.Line != nil {
		if owner, ok := m.(mark.LeaderLineOwner); ok {
			owner.SetLeader(&mark.LeaderLine{
				Anchor: geometry.Point2D{X: rec.Line.P1[0], Y: rec.Line.P1[1]},
				End:    geometry.Point2D{X: rec.Line.P2[0], Y: rec.Line.P2[1]},
			})
			mark.SyncLeader(m)
		}
	}
	mark.SyncLabel(m)
}

// LoadDefects rebuilds the scene from a persisted item list and resets the
// undo baseline to the loaded state.
func (e *Editor) LoadDefects(ds DefectSet) {
	e.SetImage(e.imagePath, e.imageSize)
	if e.onImageReload != nil {
		e.onImageReload(e.imagePath)
	}

	for _, rec := range ds.Items {
		e.restoreItem(rec)
	}
	e.nextDefectIndex = e.calcNextDefectIndex()

	e.ResetBaseline()
	e.dirty = false
}

// LoadSnapshot rebuilds the scene, memo strokes included, from a stored
// snapshot and resets the undo baseline to the loaded state.
func (e *Editor) LoadSnapshot(snap Snapshot) {
	e.undoBlock = true
	e.restoreSnapshot(snap)
	e.undoBlock = false

	e.ResetBaseline()
	e.dirty = false
}

// ResetBaseline collapses history to the current scene; called after load
// and after a successful save so undo cannot cross a save boundary.
func (e *Editor) ResetBaseline() {
	snap := e.MakeSnapshot()
	e.undoStack = []Snapshot{snap}
	e.redoStack = nil
}
