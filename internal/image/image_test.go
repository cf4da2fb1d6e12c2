package image

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-marker/internal/mark"
	"plan-marker/pkg/geometry"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	path := filepath.Join(t.TempDir(), "plan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestLoadPNG(t *testing.T) {
	path := writeTestPNG(t, 80, 60)

	plan, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 80, plan.Width())
	assert.Equal(t, 60, plan.Height())
	assert.Equal(t, 0.0, plan.DPI)
	assert.Equal(t, 0.0, plan.MillimetersPerPixel())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
}

func TestMillimetersPerPixel(t *testing.T) {
	plan := &Plan{DPI: 254}
	assert.InDelta(t, 0.1, plan.MillimetersPerPixel(), 1e-9)
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("floor2.PNG"))
	assert.True(t, IsSupportedFormat("scan.tif"))
	assert.False(t, IsSupportedFormat("plan.pdf"))
}

func TestRenderDrawsMarkOutline(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			base.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	plan := &Plan{Image: base}

	c := mark.NewCircleMark(geometry.Point2D{X: 100, Y: 100})
	c.SetDisplayID(3)

	a := NewAnnotator()
	out := a.Render(plan, []mark.Mark{c}, nil)

	require.Equal(t, 200, out.Bounds().Dx())

	// The outline passes through the rightmost point of the circle.
	edge := out.RGBAAt(118, 100)
	assert.Equal(t, a.MarkColor, edge)

	// The interior is tinted, so it is no longer pure white.
	inside := out.RGBAAt(108, 100)
	assert.Less(t, int(inside.G), 255)
}

func TestRenderDrawsMemoLine(t *testing.T) {
	plan := &Plan{Image: image.NewRGBA(image.Rect(0, 0, 100, 100))}

	memo := mark.NewMemoLine(geometry.Point2D{X: 10, Y: 50}, geometry.Point2D{X: 90, Y: 50})
	a := NewAnnotator()
	out := a.Render(plan, nil, []mark.Memo{memo})

	assert.Equal(t, a.MemoColor, out.RGBAAt(50, 50))
}

func TestRenderSkipsHiddenMarks(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			base.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	plan := &Plan{Image: base}

	c := mark.NewCircleMark(geometry.Point2D{X: 50, Y: 50})
	c.SetVisible(false)

	a := NewAnnotator()
	out := a.Render(plan, []mark.Mark{c}, nil)

	assert.Equal(t, color.RGBA{255, 255, 255, 255}, out.RGBAAt(68, 50))
}
