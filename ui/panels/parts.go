package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"plan-marker/internal/app"
	"plan-marker/internal/project"
	"plan-marker/ui/dialogs"
)

// PartsPanel manages the part / sub-part / inspection hierarchy of the open
// project.
type PartsPanel struct {
	widget.BaseWidget

	state *app.State
	win   fyne.Window

	partList *widget.List
	subList  *widget.List
	inspSel  *widget.Select

	selectedPart int
	selectedSub  int

	onOpen   func(partID, subID, inspection string)
	onExport func(part *project.Part, sub *project.SubPart)
}

// NewPartsPanel creates the panel bound to the application state.
func NewPartsPanel(state *app.State) *PartsPanel {
	pp := &PartsPanel{state: state, selectedPart: -1, selectedSub: -1}

	pp.partList = widget.NewList(
		func() int { return len(pp.parts()) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(pp.parts()[i].Name)
		},
	)
	pp.partList.OnSelected = func(i widget.ListItemID) {
		pp.selectedPart = i
		pp.selectedSub = -1
		pp.subList.UnselectAll()
		pp.subList.Refresh()
		pp.refreshInspections()
	}

	pp.subList = widget.NewList(
		func() int { return len(pp.subParts()) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(pp.subParts()[i].Name)
		},
	)
	pp.subList.OnSelected = func(i widget.ListItemID) {
		pp.selectedSub = i
		pp.refreshInspections()
	}

	pp.inspSel = widget.NewSelect(nil, nil)

	state.On(app.EventProjectLoaded, func(interface{}) { pp.Reload() })
	state.On(app.EventProjectClosed, func(interface{}) { pp.Reload() })
	state.On(app.EventInspectionsChanged, func(interface{}) { pp.refreshInspections() })

	pp.ExtendBaseWidget(pp)
	return pp
}

// SetWindow sets the parent window used for dialogs.
func (pp *PartsPanel) SetWindow(win fyne.Window) {
	pp.win = win
}

// OnOpen sets the callback invoked when the user opens a sub-part for
// annotation.
func (pp *PartsPanel) OnOpen(fn func(partID, subID, inspection string)) {
	pp.onOpen = fn
}

// OnExport sets the callback invoked to export reports for a sub-part.
func (pp *PartsPanel) OnExport(fn func(part *project.Part, sub *project.SubPart)) {
	pp.onExport = fn
}

// Reload resets selection and refreshes all lists from the project.
func (pp *PartsPanel) Reload() {
	pp.selectedPart = -1
	pp.selectedSub = -1
	pp.partList.UnselectAll()
	pp.subList.UnselectAll()
	pp.partList.Refresh()
	pp.subList.Refresh()
	pp.refreshInspections()
}

func (pp *PartsPanel) parts() []*project.Part {
	if pp.state.Project == nil {
		return nil
	}
	return pp.state.Project.Parts
}

func (pp *PartsPanel) subParts() []*project.SubPart {
	parts := pp.parts()
	if pp.selectedPart < 0 || pp.selectedPart >= len(parts) {
		return nil
	}
	return parts[pp.selectedPart].SubParts
}

func (pp *PartsPanel) currentPart() *project.Part {
	parts := pp.parts()
	if pp.selectedPart < 0 || pp.selectedPart >= len(parts) {
		return nil
	}
	return parts[pp.selectedPart]
}

func (pp *PartsPanel) currentSub() *project.SubPart {
	subs := pp.subParts()
	if pp.selectedSub < 0 || pp.selectedSub >= len(subs) {
		return nil
	}
	return subs[pp.selectedSub]
}

func (pp *PartsPanel) refreshInspections() {
	sub := pp.currentSub()
	if sub == nil {
		pp.inspSel.Options = nil
		pp.inspSel.ClearSelected()
		pp.inspSel.Refresh()
		return
	}
	keys := sub.InspectionKeys()
	pp.inspSel.Options = keys
	if len(keys) > 0 {
		pp.inspSel.SetSelected(keys[len(keys)-1])
	} else {
		pp.inspSel.ClearSelected()
	}
	pp.inspSel.Refresh()
}

func (pp *PartsPanel) addPart() {
	entry := widget.NewEntry()
	dialog.ShowForm("New part", "Create", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", entry)},
		func(ok bool) {
			if !ok || entry.Text == "" || pp.state.Project == nil {
				return
			}
			pp.state.Project.Parts = append(pp.state.Project.Parts, &project.Part{
				ID:   project.NewID("part"),
				Name: entry.Text,
			})
			pp.state.SetModified(true)
			pp.partList.Refresh()
		}, pp.win)
}

func (pp *PartsPanel) addSubPart() {
	part := pp.currentPart()
	if part == nil {
		return
	}
	dialogs.ShowSubPartForm(pp.win, func(name, imagePath string) {
		sp := &project.SubPart{
			ID:        project.NewID("subpart"),
			Name:      name,
			ImagePath: imagePath,
		}
		sp.EnsureInspection(project.DefaultInspection)
		part.SubParts = append(part.SubParts, sp)
		pp.state.SetModified(true)
		pp.subList.Refresh()
	})
}

func (pp *PartsPanel) addInspection() {
	sub := pp.currentSub()
	if sub == nil {
		return
	}
	dialogs.ShowInspectionForm(pp.win, dialogs.InspectionInfo{}, func(info dialogs.InspectionInfo) {
		key := project.NewID("insp")
		sub.EnsureInspection(key)
		ins := sub.Inspections[key]
		ins.Name = info.Name
		ins.StartDate = info.StartDate
		ins.EndDate = info.EndDate
		pp.state.SetModified(true)
		pp.state.Emit(app.EventInspectionsChanged, sub.ID)
	})
}

func (pp *PartsPanel) copyInspection() {
	sub := pp.currentSub()
	if sub == nil || pp.inspSel.Selected == "" {
		return
	}
	src := pp.inspSel.Selected
	dialogs.ShowInspectionForm(pp.win, dialogs.InspectionInfo{}, func(info dialogs.InspectionInfo) {
		key := project.NewID("insp")
		if err := sub.CopyInspection(src, key); err != nil {
			dialog.ShowError(err, pp.win)
			return
		}
		ins := sub.Inspections[key]
		ins.Name = info.Name
		ins.StartDate = info.StartDate
		ins.EndDate = info.EndDate
		pp.state.SetModified(true)
		pp.state.Emit(app.EventInspectionsChanged, sub.ID)
	})
}

func (pp *PartsPanel) openSelected() {
	part := pp.currentPart()
	sub := pp.currentSub()
	if part == nil || sub == nil || pp.onOpen == nil {
		return
	}
	insp := pp.inspSel.Selected
	if insp == "" {
		dialog.ShowInformation("No inspection",
			"Select or create an inspection first", pp.win)
		return
	}
	pp.onOpen(part.ID, sub.ID, insp)
}

func (pp *PartsPanel) exportSelected() {
	part := pp.currentPart()
	sub := pp.currentSub()
	if part == nil || sub == nil || pp.onExport == nil {
		return
	}
	pp.onExport(part, sub)
}

func (pp *PartsPanel) CreateRenderer() fyne.WidgetRenderer {
	partHeader := container.NewBorder(nil, nil, nil,
		widget.NewButton("+", pp.addPart),
		widget.NewLabelWithStyle("Parts", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	subHeader := container.NewBorder(nil, nil, nil,
		widget.NewButton("+", pp.addSubPart),
		widget.NewLabelWithStyle("Sub-parts", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
	)
	inspRow := container.NewBorder(nil, nil,
		widget.NewLabel("Inspection"),
		container.NewHBox(
			widget.NewButton("+", pp.addInspection),
			widget.NewButton("Copy", pp.copyInspection),
		),
		pp.inspSel,
	)

	buttons := container.NewGridWithColumns(2,
		widget.NewButton("Open", pp.openSelected),
		widget.NewButton("Export", pp.exportSelected),
	)

	lists := container.NewGridWithRows(2,
		container.NewBorder(partHeader, nil, nil, nil, pp.partList),
		container.NewBorder(subHeader, nil, nil, nil, pp.subList),
	)
	return widget.NewSimpleRenderer(container.NewBorder(nil,
		container.NewVBox(inspRow, buttons), nil, nil, lists))
}

// Describe returns a short status line for the current selection.
func (pp *PartsPanel) Describe() string {
	part := pp.currentPart()
	sub := pp.currentSub()
	switch {
	case part == nil:
		return "No part selected"
	case sub == nil:
		return part.Name
	default:
		return fmt.Sprintf("%s / %s / %s", part.Name, sub.Name, pp.inspSel.Selected)
	}
}
