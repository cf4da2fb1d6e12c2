package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"plan-marker/internal/editor"
	"plan-marker/internal/mark"
)

// memberOptions are the building members a defect can be attributed to.
var memberOptions = []string{"Wall", "Slab", "Column", "Beam", "Ceiling", "Floor", "Other"}

// DetailPanel edits the defect metadata of the selected circle mark. Every
// widget commits straight back to the editor as it changes; there is no
// separate apply step.
type DetailPanel struct {
	widget.BaseWidget

	ed     *editor.Editor
	markID string

	// loading suppresses commit callbacks while the form is being
	// populated from a mark.
	loading bool

	member     *widget.Select
	location   *widget.Entry
	defectType *widget.Entry
	width      *widget.Entry
	length     *widget.Entry
	count      *widget.Entry
	progress   *widget.Check
	remark     *widget.Entry

	onApplied func()
}

// NewDetailPanel creates the panel bound to the editor.
func NewDetailPanel(ed *editor.Editor) *DetailPanel {
	dp := &DetailPanel{ed: ed}

	dp.member = widget.NewSelect(memberOptions, func(string) { dp.commit() })
	dp.location = widget.NewEntry()
	dp.location.OnChanged = func(string) { dp.commit() }
	dp.defectType = widget.NewEntry()
	dp.defectType.OnChanged = func(string) { dp.commit() }
	dp.width = widget.NewEntry()
	dp.width.SetPlaceHolder("mm")
	dp.width.OnChanged = func(string) { dp.commit() }
	dp.length = widget.NewEntry()
	dp.length.SetPlaceHolder("m")
	dp.length.OnChanged = func(string) { dp.commit() }
	dp.count = widget.NewEntry()
	dp.count.SetPlaceHolder("EA")
	dp.count.OnChanged = func(string) { dp.commit() }
	dp.progress = widget.NewCheck("Progressing", func(bool) { dp.commit() })
	dp.remark = widget.NewMultiLineEntry()
	dp.remark.OnChanged = func(string) { dp.commit() }

	dp.ExtendBaseWidget(dp)
	return dp
}

// OnApplied sets a callback invoked after each write-back to the editor.
func (dp *DetailPanel) OnApplied(fn func()) {
	dp.onApplied = fn
}

// ShowMark loads a circle mark's defect info into the form.
func (dp *DetailPanel) ShowMark(c *mark.CircleMark) {
	dp.loading = true
	dp.markID = c.ID()
	info := c.Info

	dp.member.SetSelected(info.Member)
	dp.location.SetText(info.Location)
	dp.defectType.SetText(info.DefectType)
	dp.width.SetText(info.Size.WidthMM)
	dp.length.SetText(info.Size.LengthM)
	dp.count.SetText(info.Size.CountEA)
	dp.progress.SetChecked(info.Progress)
	dp.remark.SetText(info.Remark)
	dp.loading = false
}

// Clear empties the form and detaches it from any mark.
func (dp *DetailPanel) Clear() {
	dp.loading = true
	dp.markID = ""
	dp.member.ClearSelected()
	dp.location.SetText("")
	dp.defectType.SetText("")
	dp.width.SetText("")
	dp.length.SetText("")
	dp.count.SetText("")
	dp.progress.SetChecked(false)
	dp.remark.SetText("")
	dp.loading = false
}

func (dp *DetailPanel) commit() {
	if dp.loading || dp.markID == "" {
		return
	}
	dp.ed.SetDefectInfo(dp.markID, mark.DefectInfo{
		Member:     dp.member.Selected,
		Location:   dp.location.Text,
		DefectType: dp.defectType.Text,
		Size: mark.SizeInfo{
			WidthMM: dp.width.Text,
			LengthM: dp.length.Text,
			CountEA: dp.count.Text,
		},
		Progress: dp.progress.Checked,
		Remark:   dp.remark.Text,
	})
	if dp.onApplied != nil {
		dp.onApplied()
	}
}

func (dp *DetailPanel) CreateRenderer() fyne.WidgetRenderer {
	form := widget.NewForm(
		widget.NewFormItem("Member", dp.member),
		widget.NewFormItem("Location", dp.location),
		widget.NewFormItem("Type", dp.defectType),
		widget.NewFormItem("Width", dp.width),
		widget.NewFormItem("Length", dp.length),
		widget.NewFormItem("Count", dp.count),
		widget.NewFormItem("", dp.progress),
		widget.NewFormItem("Remark", dp.remark),
	)
	box := container.NewVBox(
		widget.NewLabelWithStyle("Defect", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
	)
	return widget.NewSimpleRenderer(container.NewVScroll(box))
}
