// Package panels provides the side panels of the main window.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"plan-marker/internal/editor"
)

// toolEntry maps a palette label to an editor tool.
type toolEntry struct {
	label string
	tool  editor.Tool
}

var toolEntries = []toolEntry{
	{"Circle", editor.ToolCircle},
	{"Square", editor.ToolSquare},
	{"Triangle", editor.ToolTriangle},
	{"S-curve", editor.ToolSCurve},
	{"Text", editor.ToolText},
	{"Memo line", editor.ToolMemoLine},
	{"Memo path", editor.ToolMemoFree},
}

// ToolPalette selects the creation tool and edit mode.
type ToolPalette struct {
	widget.BaseWidget

	ed        *editor.Editor
	tools     *widget.RadioGroup
	mode      *widget.RadioGroup
	onChanged func()
}

// NewToolPalette creates the palette bound to the editor.
func NewToolPalette(ed *editor.Editor) *ToolPalette {
	tp := &ToolPalette{ed: ed}

	labels := make([]string, len(toolEntries))
	for i, e := range toolEntries {
		labels[i] = e.label
	}
	tp.tools = widget.NewRadioGroup(labels, func(selected string) {
		for _, e := range toolEntries {
			if e.label == selected {
				ed.SetTool(e.tool)
				break
			}
		}
		if tp.onChanged != nil {
			tp.onChanged()
		}
	})
	tp.tools.SetSelected(toolEntries[0].label)

	tp.mode = widget.NewRadioGroup([]string{"Select", "Area select"}, func(selected string) {
		if selected == "Area select" {
			ed.SetEditMode(editor.ModeAreaSelect)
		} else {
			ed.SetEditMode(editor.ModeSelect)
		}
		if tp.onChanged != nil {
			tp.onChanged()
		}
	})
	tp.mode.SetSelected("Select")

	tp.ExtendBaseWidget(tp)
	return tp
}

// OnChanged sets a callback invoked after any palette change.
func (tp *ToolPalette) OnChanged(fn func()) {
	tp.onChanged = fn
}

func (tp *ToolPalette) CreateRenderer() fyne.WidgetRenderer {
	box := container.NewVBox(
		widget.NewLabelWithStyle("Tool", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		tp.tools,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Mode", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		tp.mode,
	)
	return widget.NewSimpleRenderer(container.NewVScroll(box))
}
