package image

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"plan-marker/internal/mark"
	"plan-marker/pkg/geometry"
)

// Annotator renders defect annotations onto a floor plan for report export.
type Annotator struct {
	MarkColor  color.RGBA
	MemoColor  color.RGBA
	TextColor  color.RGBA
	FillAlpha  float64 // interior tint of circle marks, 0 disables
	LineWidth  int
	Background color.Color
}

// NewAnnotator creates an Annotator with the default report palette.
func NewAnnotator() *Annotator {
	return &Annotator{
		MarkColor:  color.RGBA{210, 30, 30, 255},
		MemoColor:  color.RGBA{30, 60, 200, 255},
		TextColor:  color.RGBA{20, 20, 20, 255},
		FillAlpha:  0.12,
		LineWidth:  2,
		Background: color.White,
	}
}

// Render draws the plan image with all marks and memos on top.
func (a *Annotator) Render(plan *Plan, marks []mark.Mark, memos []mark.Memo) *image.RGBA {
	w, h := plan.Width(), plan.Height()
	if w == 0 || h == 0 {
		w, h = 1, 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{a.Background}, image.Point{}, draw.Src)
	if plan.Image != nil {
		draw.Draw(dst, dst.Bounds(), plan.Image, plan.Image.Bounds().Min, draw.Over)
	}

	for _, m := range marks {
		if !m.Visible() {
			continue
		}
		a.drawMark(dst, m)
	}
	for _, memo := range memos {
		a.drawMemo(dst, memo)
	}
	return dst
}

func (a *Annotator) drawMark(dst *image.RGBA, m mark.Mark) {
	if c, ok := m.(*mark.CircleMark); ok && a.FillAlpha > 0 {
		a.fillCircle(dst, c)
	}

	if out, ok := m.(mark.Outliner); ok {
		for _, ring := range out.Outline() {
			a.strokeRing(dst, ring)
		}
	}

	if owner, ok := m.(mark.LeaderLineOwner); ok {
		if l := owner.Leader(); l != nil {
			a.strokeLine(dst, l.Anchor, l.End, a.MarkColor)
		}
	}

	if c, ok := m.(*mark.CircleMark); ok && c.DisplayID != 0 {
		a.drawCenteredText(dst, c.Center(), fmt.Sprintf("%d", c.DisplayID))
	}
	if n, ok := m.(*mark.NoteText); ok {
		a.drawCenteredText(dst, n.Center(), n.Text)
	}

	if owner, ok := m.(mark.LabelOwner); ok {
		if label := owner.Label(); label != nil && label.Text != "" {
			a.drawText(dst, label.Pos, label.Text)
		}
	}
}

func (a *Annotator) drawMemo(dst *image.RGBA, memo mark.Memo) {
	switch m := memo.(type) {
	case *mark.MemoLine:
		a.strokeLine(dst, m.P1, m.P2, a.MemoColor)
	case *mark.MemoFreePath:
		for i := 1; i < len(m.Points); i++ {
			a.strokeLine(dst, m.Points[i-1], m.Points[i], a.MemoColor)
		}
	}
}

func (a *Annotator) strokeRing(dst *image.RGBA, ring []geometry.Point2D) {
	n := len(ring)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		a.strokeLine(dst, ring[i], ring[(i+1)%n], a.MarkColor)
	}
}

// strokeLine rasterizes a segment by stepping one pixel at a time and
// stamping a LineWidth square at each step.
func (a *Annotator) strokeLine(dst *image.RGBA, p1, p2 geometry.Point2D, c color.RGBA) {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	steps := int(math.Max(math.Abs(dx), math.Abs(dy))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(p1.X + dx*t))
		y := int(math.Round(p1.Y + dy*t))
		a.stamp(dst, x, y, c)
	}
}

func (a *Annotator) stamp(dst *image.RGBA, x, y int, c color.RGBA) {
	half := a.LineWidth / 2
	for oy := -half; oy <= half; oy++ {
		for ox := -half; ox <= half; ox++ {
			px, py := x+ox, y+oy
			if image.Pt(px, py).In(dst.Bounds()) {
				dst.SetRGBA(px, py, c)
			}
		}
	}
}

// fillCircle tints the interior of a circle mark so it stays readable over
// the plan line work.
func (a *Annotator) fillCircle(dst *image.RGBA, c *mark.CircleMark) {
	b := c.Bounds()
	center := c.Center()
	radius := b.Width / 2
	for y := int(b.Y); y <= int(b.Y+b.Height); y++ {
		for x := int(b.X); x <= int(b.X+b.Width); x++ {
			if !image.Pt(x, y).In(dst.Bounds()) {
				continue
			}
			ddx := float64(x) - center.X
			ddy := float64(y) - center.Y
			if ddx*ddx+ddy*ddy > radius*radius {
				continue
			}
			dst.SetRGBA(x, y, blendOver(dst.RGBAAt(x, y), a.MarkColor, a.FillAlpha))
		}
	}
}

// blendOver mixes src over dst at the given opacity.
func blendOver(dst, src color.RGBA, opacity float64) color.RGBA {
	mix := func(d, s uint8) uint8 {
		v := float64(s)*opacity + float64(d)*(1-opacity)
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	return color.RGBA{
		R: mix(dst.R, src.R),
		G: mix(dst.G, src.G),
		B: mix(dst.B, src.B),
		A: 255,
	}
}

func (a *Annotator) drawText(dst *image.RGBA, pos geometry.Point2D, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(a.TextColor),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(pos.X)),
			Y: fixed.I(int(pos.Y) + face.Ascent),
		},
	}
	d.DrawString(text)
}

func (a *Annotator) drawCenteredText(dst *image.RGBA, center geometry.Point2D, text string) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(a.TextColor),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(center.X) - width/2),
			Y: fixed.I(int(center.Y) + (face.Ascent-face.Descent)/2),
		},
	}
	d.DrawString(text)
}
