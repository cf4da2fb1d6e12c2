package mark

import (
	"plan-marker/pkg/geometry"
)

// Label placement offsets from the owning mark's bounding box.
const (
	labelMarginX = 6.0
	labelMarginY = 2.0

	// defaultLabelHeight approximates the rendered text height; the UI
	// layer overwrites Width/Height with measured values.
	defaultLabelHeight = 18.0
	labelCharWidth     = 8.0
)

// Label is the text annotation a mark shows beside its bounding box.
type Label struct {
	Text   string
	Pos    geometry.Point2D
	Width  float64
	Height float64
}

// NewLabel creates a label with estimated dimensions.
func NewLabel(text string) *Label {
	return &Label{
		Text:   text,
		Width:  float64(len([]rune(text))) * labelCharWidth,
		Height: defaultLabelHeight,
	}
}

// Bounds returns the label's scene-space rectangle.
func (l *Label) Bounds() geometry.Rect {
	return geometry.NewRect(l.Pos.X, l.Pos.Y, l.Width, l.Height)
}

// Contains reports whether a scene point hits the label.
func (l *Label) Contains(p geometry.Point2D) bool {
	return l.Bounds().Contains(p)
}

// SyncLabel repositions a mark's label at the fixed offset from the mark's
// bounding box: right edge plus margin, bottom-aligned.
func SyncLabel(m Mark) {
	owner, ok := m.(LabelOwner)
	if !ok {
		return
	}
	label := owner.Label()
	if label == nil {
		return
	}

	b := m.Bounds()
	label.Pos = geometry.Point2D{
		X: b.X + b.Width + labelMarginX,
		Y: b.Y + b.Height - label.Height + labelMarginY,
	}
}
