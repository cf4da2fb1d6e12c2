package panels

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-marker/internal/config"
	"plan-marker/internal/editor"
	"plan-marker/internal/mark"
	"plan-marker/pkg/geometry"
)

func newDetailFixture(t *testing.T) (*DetailPanel, *editor.Editor, *mark.CircleMark) {
	t.Helper()
	test.NewApp()
	ed := editor.NewEditor(config.GetTuning(), zerolog.Nop())
	ed.SetImage("plan.png", geometry.NewSize(800, 600))
	ed.ResetBaseline()

	ed.Handle(editor.Intent{Kind: editor.IntentDoubleClick, At: geometry.Point2D{X: 200, Y: 200}})
	marks := ed.Marks()
	require.Len(t, marks, 1)
	c, ok := marks[0].(*mark.CircleMark)
	require.True(t, ok)

	return NewDetailPanel(ed), ed, c
}

func TestDetailCommitsOnEveryChange(t *testing.T) {
	dp, _, c := newDetailFixture(t)
	dp.ShowMark(c)

	var applied int
	dp.OnApplied(func() { applied++ })

	dp.location.SetText("3F corridor")
	assert.Equal(t, "3F corridor", c.Info.Location)

	dp.defectType.SetText("Crack")
	assert.Equal(t, "Crack", c.Info.DefectType)

	dp.width.SetText("0.3")
	assert.Equal(t, "0.3", c.Info.Size.WidthMM)

	dp.progress.SetChecked(true)
	assert.True(t, c.Info.Progress)

	dp.member.SetSelected("Slab")
	assert.Equal(t, "Slab", c.Info.Member)

	assert.Equal(t, 5, applied)
}

func TestDetailLoadDoesNotWriteBack(t *testing.T) {
	dp, ed, c := newDetailFixture(t)
	c.Info.Location = "stairwell"
	ed.ResetBaseline()
	ed.ClearDirty()

	// Populating the form must not count as an edit.
	dp.ShowMark(c)
	assert.False(t, ed.Dirty())
	assert.Equal(t, "stairwell", c.Info.Location)

	dp.Clear()
	assert.False(t, ed.Dirty())
	assert.Equal(t, "stairwell", c.Info.Location)
}
