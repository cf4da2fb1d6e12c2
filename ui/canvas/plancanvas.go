// Package canvas provides the floor plan canvas with pan, zoom, and mark
// editing.
package canvas

import (
	"image"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"plan-marker/internal/editor"
	planimg "plan-marker/internal/image"
	"plan-marker/pkg/geometry"
)

// tickInterval drives the editor's press-hold and edit-coalescing deadlines.
const tickInterval = 50 * time.Millisecond

// PlanCanvas displays the floor plan with its marks and feeds pointer input
// to the editor.
type PlanCanvas struct {
	widget.BaseWidget

	// mu serializes editor access: the deadline ticker runs on its own
	// goroutine while pointer events arrive on the event thread, and the
	// editor itself has no locking. Editor callbacks fire with mu held.
	mu sync.Mutex

	ed        *editor.Editor
	plan      *planimg.Plan
	annotator *planimg.Annotator

	// Scene rendered at image resolution, rebuilt when stale.
	rendered *image.RGBA
	stale    bool

	raster  *fynecanvas.Raster
	content *planContent
	scroll  *zoomScroll
	imgSize fyne.Size

	// Modifier state fed by the window's key handlers; fyne pointer events
	// do not carry modifiers.
	ctrl  bool
	shift bool

	pressed bool
	stopCh  chan struct{}
}

// NewPlanCanvas creates a canvas bound to the given editor.
func NewPlanCanvas(ed *editor.Editor) *PlanCanvas {
	pc := &PlanCanvas{
		ed:        ed,
		annotator: planimg.NewAnnotator(),
		stale:     true,
		imgSize:   fyne.NewSize(400, 300),
	}

	pc.raster = fynecanvas.NewRaster(pc.draw)
	pc.raster.ScaleMode = fynecanvas.ImageScalePixels
	pc.raster.SetMinSize(pc.imgSize)

	pc.content = newPlanContent(pc, pc.raster)
	pc.scroll = newZoomScroll(pc.content, pc)

	ed.OnZoomChanged(func(float64) { pc.updateContentSize() })

	pc.ExtendBaseWidget(pc)
	return pc
}

// Container returns the canvas container for embedding in layouts.
func (pc *PlanCanvas) Container() fyne.CanvasObject {
	return pc.scroll
}

// SetPlan swaps in a new floor plan image.
func (pc *PlanCanvas) SetPlan(plan *planimg.Plan) {
	pc.plan = plan
	pc.Invalidate()
	pc.updateContentSize()
}

// Plan returns the currently displayed floor plan, or nil.
func (pc *PlanCanvas) Plan() *planimg.Plan {
	return pc.plan
}

// SetModifiers updates the modifier-key state used for subsequent pointer
// events.
func (pc *PlanCanvas) SetModifiers(ctrl, shift bool) {
	pc.ctrl = ctrl
	pc.shift = shift
}

// Invalidate marks the rendered scene stale and refreshes the display.
func (pc *PlanCanvas) Invalidate() {
	pc.stale = true
	pc.raster.Refresh()
}

// Start launches the deadline ticker. The ticker fires pending press-hold
// and edit-coalescing actions and repaints when they change the scene.
func (pc *PlanCanvas) Start() {
	pc.stopCh = make(chan struct{})
	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pc.stopCh:
				return
			case now := <-ticker.C:
				pc.tick(now)
			}
		}
	}()
}

// tick fires any expired editor deadline and repaints mid-drag.
func (pc *PlanCanvas) tick(now time.Time) {
	pc.mu.Lock()
	pc.ed.Tick(now)
	dragging := pc.ed.Dragging()
	pc.mu.Unlock()
	if dragging {
		pc.Invalidate()
	}
}

// Stop halts the deadline ticker.
func (pc *PlanCanvas) Stop() {
	if pc.stopCh != nil {
		close(pc.stopCh)
		pc.stopCh = nil
	}
}

func (pc *PlanCanvas) mods() editor.Modifier {
	var m editor.Modifier
	if pc.ctrl {
		m |= editor.ModCtrl
	}
	if pc.shift {
		m |= editor.ModShift
	}
	return m
}

// toScene converts a viewport position to scene coordinates.
func (pc *PlanCanvas) toScene(pos fyne.Position) geometry.Point2D {
	offset := pc.scroll.Offset()
	zoom := pc.ed.Zoom()
	return geometry.Point2D{
		X: float64(pos.X+offset.X) / zoom,
		Y: float64(pos.Y+offset.Y) / zoom,
	}
}

func (pc *PlanCanvas) dispatch(in editor.Intent) {
	pc.mu.Lock()
	pc.ed.Handle(in)
	pc.mu.Unlock()
	pc.Invalidate()
}

func (pc *PlanCanvas) updateContentSize() {
	zoom := pc.ed.Zoom()
	size := pc.ed.ImageSize()
	if size.Width == 0 || size.Height == 0 {
		pc.imgSize = fyne.NewSize(400, 300)
	} else {
		pc.imgSize = fyne.NewSize(
			float32(size.Width*zoom),
			float32(size.Height*zoom),
		)
	}

	pc.raster.SetMinSize(pc.imgSize)
	pc.raster.Resize(pc.imgSize)
	if pc.content != nil {
		pc.content.Resize(pc.imgSize)
		pc.content.Refresh()
	}
	pc.Invalidate()
	if pc.scroll != nil {
		pc.scroll.Refresh()
	}
}

// draw is the raster drawing function: the annotated scene scaled by the
// editor zoom, plus selection and anchor-handle adornments in view space.
func (pc *PlanCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
	}

	if pc.plan == nil {
		return output
	}

	pc.mu.Lock()
	if pc.stale || pc.rendered == nil {
		pc.rendered = pc.annotator.Render(pc.plan, pc.ed.Marks(), pc.ed.Memos())
		pc.stale = false
	}
	zoom := pc.ed.Zoom()
	pc.mu.Unlock()
	src := pc.rendered
	srcBounds := src.Bounds()
	for y := 0; y < h; y++ {
		srcY := int(float64(y) / zoom)
		if srcY < srcBounds.Min.Y || srcY >= srcBounds.Max.Y {
			continue
		}
		for x := 0; x < w; x++ {
			srcX := int(float64(x) / zoom)
			if srcX < srcBounds.Min.X || srcX >= srcBounds.Max.X {
				continue
			}
			output.SetRGBA(x, y, src.RGBAAt(srcX, srcY))
		}
	}

	pc.drawAdornments(output, zoom)
	return output
}

var (
	selectionColor = color.RGBA{66, 133, 244, 255}
	handleColor    = color.RGBA{255, 140, 0, 255}
)

func (pc *PlanCanvas) drawAdornments(output *image.RGBA, zoom float64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	for _, m := range pc.ed.SelectedMarks() {
		b := m.Bounds()
		pc.drawRect(output,
			int(b.X*zoom), int(b.Y*zoom),
			int((b.X+b.Width)*zoom), int((b.Y+b.Height)*zoom),
			selectionColor)
	}
	for _, memo := range pc.ed.Memos() {
		if !memo.Selected() {
			continue
		}
		b := memo.Bounds()
		pc.drawRect(output,
			int(b.X*zoom), int(b.Y*zoom),
			int((b.X+b.Width)*zoom), int((b.Y+b.Height)*zoom),
			selectionColor)
	}

	if band, ok := pc.ed.BandRect(); ok {
		pc.drawRect(output,
			int(band.X*zoom), int(band.Y*zoom),
			int((band.X+band.Width)*zoom), int((band.Y+band.Height)*zoom),
			selectionColor)
	}

	if handle, ok := pc.ed.AnchorHandle(); ok {
		cx, cy := int(handle.X*zoom), int(handle.Y*zoom)
		pc.drawRect(output, cx-4, cy-4, cx+4, cy+4, handleColor)
	}
}

func (pc *PlanCanvas) drawRect(output *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	for x := x1; x <= x2; x++ {
		setPixel(output, x, y1, c)
		setPixel(output, x, y2, c)
	}
	for y := y1; y <= y2; y++ {
		setPixel(output, x1, y, c)
		setPixel(output, x2, y, c)
	}
}

func setPixel(output *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(output.Bounds()) {
		output.SetRGBA(x, y, c)
	}
}

// CreateRenderer implements fyne.Widget.
func (pc *PlanCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(pc.scroll)
}

// zoomScroll wraps a scroll container and routes wheel events through the
// editor so Ctrl-wheel rescales marks and Shift-wheel zooms the view.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *PlanCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *PlanCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	pc := zs.canvas
	if pc.ctrl || pc.shift {
		pc.dispatch(editor.Intent{
			Kind:       editor.IntentWheel,
			At:         pc.toScene(ev.Position),
			Mods:       pc.mods(),
			WheelDelta: float64(ev.Scrolled.DY),
		})
		return
	}
	zs.scroll.Scrolled(ev)
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// planContent wraps the raster to receive pointer events.
type planContent struct {
	widget.BaseWidget
	canvas *PlanCanvas
	raster *fynecanvas.Raster
}

var (
	_ desktop.Mouseable   = (*planContent)(nil)
	_ desktop.Hoverable   = (*planContent)(nil)
	_ fyne.DoubleTappable = (*planContent)(nil)
)

func newPlanContent(pc *PlanCanvas, raster *fynecanvas.Raster) *planContent {
	c := &planContent{canvas: pc, raster: raster}
	c.ExtendBaseWidget(c)
	return c
}

func (c *planContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

func (c *planContent) MinSize() fyne.Size {
	return c.raster.MinSize()
}

func (c *planContent) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	pc := c.canvas
	pc.pressed = true
	pc.dispatch(editor.Intent{
		Kind: editor.IntentPress,
		At:   c.toScene(ev.Position),
		Mods: pc.mods(),
	})
}

func (c *planContent) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	pc := c.canvas
	pc.pressed = false
	pc.dispatch(editor.Intent{
		Kind: editor.IntentRelease,
		At:   c.toScene(ev.Position),
		Mods: pc.mods(),
	})
}

func (c *planContent) MouseIn(*desktop.MouseEvent) {}

func (c *planContent) MouseMoved(ev *desktop.MouseEvent) {
	pc := c.canvas
	kind := editor.IntentHover
	if pc.pressed {
		kind = editor.IntentMove
	}
	pc.dispatch(editor.Intent{
		Kind: kind,
		At:   c.toScene(ev.Position),
		Mods: pc.mods(),
	})
}

func (c *planContent) MouseOut() {}

func (c *planContent) DoubleTapped(ev *fyne.PointEvent) {
	pc := c.canvas
	pc.dispatch(editor.Intent{
		Kind: editor.IntentDoubleClick,
		At:   c.toScene(ev.Position),
		Mods: pc.mods(),
	})
}

// toScene converts content-local coordinates to scene coordinates. Content
// positions already include the scroll offset, unlike viewport positions.
func (c *planContent) toScene(pos fyne.Position) geometry.Point2D {
	zoom := c.canvas.ed.Zoom()
	return geometry.Point2D{
		X: float64(pos.X) / zoom,
		Y: float64(pos.Y) / zoom,
	}
}
