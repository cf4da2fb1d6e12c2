package mark

import (
	"plan-marker/pkg/geometry"
)

// LeaderLine connects a fixed anchor point to the owning mark's boundary.
// The anchor only moves through an explicit anchor drag; the end point is
// recomputed from the mark's current geometry.
type LeaderLine struct {
	Anchor  geometry.Point2D
	End     geometry.Point2D
	Preview bool
}

// BeginAttach creates a zero-length preview leader anchored at the given
// scene point. Marks without leader-line capability are left untouched.
func BeginAttach(m Mark, anchor geometry.Point2D) {
	owner, ok := m.(LeaderLineOwner)
	if !ok {
		return
	}
	owner.SetLeader(&LeaderLine{Anchor: anchor, End: anchor, Preview: true})
}

// UpdateLeaderPreview points the leader directly at the raw pointer position
// during a creation drag. No ray intersection; cheap and responsive.
func UpdateLeaderPreview(m Mark, target geometry.Point2D) {
	l := leaderOf(m)
	if l == nil {
		return
	}
	l.End = target
}

// SyncLeader recomputes the leader end as the intersection of the ray from
// the anchor toward the mark's center with the mark's outline, falling back
// to the center when no intersection exists. Call after any move, scale, or
// rotation of the owning mark.
func SyncLeader(m Mark) {
	l := leaderOf(m)
	if l == nil {
		return
	}

	center := m.Center()
	end := center

	if out, ok := m.(Outliner); ok {
		bboxCenter := m.Bounds().Center()
		if dir, ok := geometry.LeaderDirection(l.Anchor, center, bboxCenter); ok {
			if hit, ok := geometry.RayOutlineIntersection(l.Anchor, dir, out.Outline()); ok {
				end = hit
			}
		}
	}

	l.End = end
	l.Preview = false
}

// ConfirmLeader finalizes geometry and drops the preview state.
func ConfirmLeader(m Mark) {
	l := leaderOf(m)
	if l == nil {
		return
	}
	SyncLeader(m)
	l.Preview = false
}

// CancelLeader removes the leader entirely; used when a creation gesture is
// aborted.
func CancelLeader(m Mark) {
	if owner, ok := m.(LeaderLineOwner); ok {
		owner.SetLeader(nil)
	}
}

// MoveAnchor reassigns the anchor point and recomputes the end. This is the
// only operation that may move an anchor.
func MoveAnchor(m Mark, anchor geometry.Point2D) {
	l := leaderOf(m)
	if l == nil {
		return
	}
	l.Anchor = anchor
	SyncLeader(m)
}

func leaderOf(m Mark) *LeaderLine {
	owner, ok := m.(LeaderLineOwner)
	if !ok {
		return nil
	}
	return owner.Leader()
}
