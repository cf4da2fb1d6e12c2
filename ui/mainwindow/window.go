// Package mainwindow provides the main application window.
package mainwindow

import (
	"encoding/json"
	"fmt"
	"time"

	"plan-marker/internal/app"
	"plan-marker/internal/config"
	"plan-marker/internal/editor"
	planimg "plan-marker/internal/image"
	"plan-marker/internal/mark"
	"plan-marker/internal/project"
	"plan-marker/internal/report"
	"plan-marker/internal/version"
	uicanvas "plan-marker/ui/canvas"
	"plan-marker/ui/dialogs"
	"plan-marker/ui/panels"
	"plan-marker/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
)

const appTitle = "Plan Marker"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	log   zerolog.Logger
	prefs *prefs.Prefs

	ed      *editor.Editor
	canvas  *uicanvas.PlanCanvas
	palette *panels.ToolPalette
	detail  *panels.DetailPanel
	parts   *panels.PartsPanel

	tabs      *container.AppTabs
	statusBar *widget.Label

	watcher *app.PlanWatcher
}

// New creates the main window wired to the application state.
func New(fyneApp fyne.App, state *app.State, log zerolog.Logger) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		log:    log,
		prefs:  prefs.Load(),
	}

	mw.ed = editor.NewEditor(config.GetTuning(), log)
	mw.canvas = uicanvas.NewPlanCanvas(mw.ed)

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEditorCallbacks()
	mw.setupEventHandlers()
	mw.restoreWindow()

	win.SetCloseIntercept(mw.onClose)
	return mw
}

func (mw *MainWindow) setupUI() {
	mw.palette = panels.NewToolPalette(mw.ed)
	mw.palette.OnChanged(func() { mw.canvas.Invalidate() })

	mw.detail = panels.NewDetailPanel(mw.ed)
	mw.detail.OnApplied(func() { mw.canvas.Invalidate() })

	mw.parts = panels.NewPartsPanel(mw.state)
	mw.parts.SetWindow(mw.Window)
	mw.parts.OnOpen(mw.openSubPart)
	mw.parts.OnExport(mw.exportReports)

	mw.tabs = container.NewAppTabs(
		container.NewTabItem("Project", mw.parts),
		container.NewTabItem("Tools", mw.palette),
		container.NewTabItem("Defect", mw.detail),
	)

	mw.statusBar = widget.NewLabel("Ready")

	split := container.NewHSplit(mw.tabs, mw.canvas.Container())
	split.SetOffset(0.25)

	mw.SetContent(container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	))
}

func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Project...", mw.onNewProject),
		fyne.NewMenuItem("Open Project...", mw.onOpenProject),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", mw.onSave),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Close Project", mw.onCloseProject),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete Selected", mw.onDeleteSelected),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Reset View", mw.onResetView),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

// setupShortcuts binds the keyboard shortcuts and the modifier tracking the
// canvas needs. Pointer events do not carry modifier state, so control and
// shift are mirrored from key presses.
func (mw *MainWindow) setupShortcuts() {
	cv := mw.Canvas()

	bind := func(name fyne.KeyName, fn func()) {
		cv.AddShortcut(&desktop.CustomShortcut{KeyName: name, Modifier: fyne.KeyModifierControl},
			func(fyne.Shortcut) { fn() })
	}
	bind(fyne.KeyZ, mw.onUndo)
	bind(fyne.KeyY, mw.onRedo)
	bind(fyne.Key0, mw.onResetView)
	bind(fyne.KeyS, mw.onSave)

	ctrl, shift := false, false
	if dc, ok := cv.(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			switch ev.Name {
			case desktop.KeyControlLeft, desktop.KeyControlRight:
				ctrl = true
			case desktop.KeyShiftLeft, desktop.KeyShiftRight:
				shift = true
			}
			mw.canvas.SetModifiers(ctrl, shift)
		})
		dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			switch ev.Name {
			case desktop.KeyControlLeft, desktop.KeyControlRight:
				ctrl = false
			case desktop.KeyShiftLeft, desktop.KeyShiftRight:
				shift = false
			}
			mw.canvas.SetModifiers(ctrl, shift)
		})
	}

	cv.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyDelete {
			mw.onDeleteSelected()
		}
	})
}

func (mw *MainWindow) setupEditorCallbacks() {
	mw.ed.OnDirty(func() {
		mw.state.SetModified(true)
		mw.canvas.Invalidate()
		mw.refreshStatus()
	})
	mw.ed.OnZoomChanged(func(float64) {
		mw.refreshStatus()
	})
	mw.ed.OnOpenDetail(func(c *mark.CircleMark) {
		mw.detail.ShowMark(c)
		mw.tabs.SelectIndex(2)
	})
	mw.ed.OnEditLabel(func(m mark.Mark) {
		current := ""
		if n, ok := m.(*mark.NoteText); ok {
			current = n.Text
		} else if owner, ok := m.(mark.LabelOwner); ok {
			if lbl := owner.Label(); lbl != nil {
				current = lbl.Text
			}
		}
		id := m.ID()
		dialogs.ShowLabelEdit(mw.Window, current, func(text string) {
			mw.ed.SetLabelText(id, text)
			mw.canvas.Invalidate()
		})
	})
	mw.ed.OnImageReload(func(path string) {
		if p := mw.canvas.Plan(); p != nil && p.Path == path {
			return
		}
		mw.loadPlan(path)
	})
}

func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventProjectLoaded, func(interface{}) {
		if path := mw.state.ProjectPath; path != "" {
			mw.prefs.Set(prefs.KeyLastProject, path)
			_ = mw.prefs.Save()
		}
		mw.refreshTitle()
		mw.updateStatus("Project loaded")
	})
	mw.state.On(app.EventProjectSaved, func(interface{}) {
		mw.refreshTitle()
		mw.updateStatus("Saved")
	})
	mw.state.On(app.EventProjectClosed, func(interface{}) {
		mw.clearScene()
		mw.refreshTitle()
		mw.updateStatus("Project closed")
	})
	mw.state.On(app.EventModified, func(interface{}) {
		mw.refreshTitle()
	})
}

func (mw *MainWindow) refreshTitle() {
	title := appTitle
	if mw.state.Project != nil {
		name := mw.state.Project.Building.Name
		if name == "" {
			name = mw.state.Project.ID
		}
		title += " - " + name
	}
	if mw.state.Modified {
		title += " *"
	}
	mw.SetTitle(title)
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// refreshStatus shows the dirty indicator, the current zoom level, and the
// real-world scale when the scan carries resolution metadata.
func (mw *MainWindow) refreshStatus() {
	text := statusText(mw.state.Modified || mw.ed.Dirty(), mw.ed.Zoom(), mw.planScale())
	mw.updateStatus(text)
}

// planScale returns the loaded plan's millimeters-per-pixel, 0 when no plan
// is loaded or the scan has no resolution metadata.
func (mw *MainWindow) planScale() float64 {
	p := mw.canvas.Plan()
	if p == nil {
		return 0
	}
	return p.MillimetersPerPixel()
}

func statusText(modified bool, zoom, mmPerPx float64) string {
	state := "Saved"
	if modified {
		state = "Modified"
	}
	text := fmt.Sprintf("%s | Zoom %.0f%%", state, zoom*100)
	if mmPerPx > 0 {
		text += fmt.Sprintf(" | %.2f mm/px", mmPerPx)
	}
	return text
}

// restoreWindow applies saved window geometry and reopens the last project.
func (mw *MainWindow) restoreWindow() {
	w := float32(mw.prefs.Float(prefs.KeyWindowW, 1200))
	h := float32(mw.prefs.Float(prefs.KeyWindowH, 800))
	mw.Resize(fyne.NewSize(w, h))

	if last := mw.prefs.String(prefs.KeyLastProject, ""); last != "" {
		if err := mw.state.OpenProjectFile(last); err != nil {
			mw.log.Warn().Err(err).Str("path", last).Msg("could not reopen last project")
		}
	}
}

// Start begins the canvas repaint loop. Call after the window is shown.
func (mw *MainWindow) Start() {
	mw.canvas.Start()
}

func (mw *MainWindow) onClose() {
	size := mw.Canvas().Size()
	mw.prefs.Set(prefs.KeyWindowW, float64(size.Width))
	mw.prefs.Set(prefs.KeyWindowH, float64(size.Height))
	_ = mw.prefs.Save()

	mw.confirmDiscard(func() {
		mw.canvas.Stop()
		mw.stopWatcher()
		mw.Close()
	})
}

// confirmDiscard runs proceed immediately when there are no unsaved changes,
// otherwise asks first.
func (mw *MainWindow) confirmDiscard(proceed func()) {
	if !mw.state.Modified && !mw.ed.Dirty() {
		proceed()
		return
	}
	dialog.ShowConfirm("Unsaved changes",
		"Discard unsaved changes?",
		func(ok bool) {
			if ok {
				proceed()
			}
		}, mw.Window)
}

// Menu action handlers

func (mw *MainWindow) onNewProject() {
	mw.confirmDiscard(func() {
		entry := widget.NewEntry()
		dialog.ShowForm("New project", "Create", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Building name", entry)},
			func(ok bool) {
				if !ok || entry.Text == "" {
					return
				}
				if _, err := mw.state.CreateProject(entry.Text); err != nil {
					dialog.ShowError(err, mw.Window)
					return
				}
				mw.clearScene()
			}, mw.Window)
	})
}

func (mw *MainWindow) onOpenProject() {
	ids := mw.state.ProjectIDs()
	if len(ids) == 0 {
		dialog.ShowInformation("Open project", "No projects registered", mw.Window)
		return
	}
	sel := widget.NewSelect(ids, nil)
	sel.SetSelectedIndex(0)
	mw.confirmDiscard(func() {
		dialog.ShowForm("Open project", "Open", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Project", sel)},
			func(ok bool) {
				if !ok || sel.Selected == "" {
					return
				}
				if err := mw.state.OpenProject(sel.Selected); err != nil {
					dialog.ShowError(err, mw.Window)
					return
				}
				mw.clearScene()
			}, mw.Window)
	})
}

func (mw *MainWindow) onSave() {
	if mw.state.Project == nil {
		return
	}
	mw.commitScene()
	if err := mw.state.SaveProject(); err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	mw.ed.ResetBaseline()
	mw.ed.ClearDirty()
}

func (mw *MainWindow) onCloseProject() {
	mw.confirmDiscard(func() {
		mw.state.CloseProject()
	})
}

func (mw *MainWindow) onUndo() {
	mw.ed.Undo()
	mw.canvas.Invalidate()
}

func (mw *MainWindow) onRedo() {
	mw.ed.Redo()
	mw.canvas.Invalidate()
}

func (mw *MainWindow) onDeleteSelected() {
	mw.ed.DeleteSelected()
	mw.detail.Clear()
	mw.canvas.Invalidate()
}

func (mw *MainWindow) onResetView() {
	mw.ed.ResetView()
	mw.canvas.Invalidate()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About",
		fmt.Sprintf("%s %s\nFloor plan defect annotation", appTitle, version.Version),
		mw.Window)
}

// Scene lifecycle

// commitScene writes the current editor scene back into the selected
// inspection slot.
func (mw *MainWindow) commitScene() {
	sub := mw.state.CurrentSubPart()
	if sub == nil {
		return
	}
	snap := mw.ed.MakeSnapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		mw.log.Error().Err(err).Msg("could not serialize scene")
		return
	}
	sub.SetDefects(mw.state.CurrentInspection, data)
}

func (mw *MainWindow) clearScene() {
	mw.stopWatcher()
	mw.ed.LoadSnapshot(editor.Snapshot{})
	mw.canvas.SetPlan(nil)
	mw.detail.Clear()
	mw.canvas.Invalidate()
}

// openSubPart loads a sub-part's floor plan and inspection scene into the
// editor. Invoked from the project panel.
func (mw *MainWindow) openSubPart(partID, subID, inspection string) {
	mw.confirmDiscard(func() {
		// Fold pending edits of the previous scene back into its slot
		// before switching; discard was already confirmed above when
		// anything was dirty.
		if err := mw.state.SelectSubPart(partID, subID, inspection); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		sub := mw.state.CurrentSubPart()

		var snap editor.Snapshot
		if raw := sub.Defects(inspection); len(raw) > 0 {
			if err := json.Unmarshal(raw, &snap); err != nil {
				mw.log.Warn().Err(err).Str("subpart", subID).Msg("could not parse stored scene")
				snap = editor.Snapshot{}
			}
		}
		if snap.Image == "" {
			snap.Image = sub.ImagePath
		}

		mw.loadPlan(snap.Image)
		mw.ed.LoadSnapshot(snap)
		mw.detail.Clear()
		mw.startWatcher(snap.Image)
		mw.updateStatus(fmt.Sprintf("Opened %s / %s", sub.Name, inspection))
	})
}

// loadPlan loads the floor plan image into both the editor and the canvas.
func (mw *MainWindow) loadPlan(path string) {
	if path == "" {
		mw.canvas.SetPlan(nil)
		return
	}
	plan, err := planimg.Load(path)
	if err != nil {
		mw.log.Warn().Err(err).Str("path", path).Msg("could not load floor plan")
		mw.canvas.SetPlan(nil)
		mw.ed.SetImage(path, mw.ed.ImageSize())
		return
	}
	mw.canvas.SetPlan(plan)
	mw.ed.SetImage(path, plan.Size())
	mw.canvas.Invalidate()
}

// Floor plan watching. Plans get re-exported from CAD while an inspection is
// in progress; offer a reload when the file changes on disk.

func (mw *MainWindow) startWatcher(path string) {
	mw.stopWatcher()
	w := app.NewPlanWatcher(path, 2*time.Second)
	if w == nil {
		return
	}
	w.OnChanged(func() {
		dialog.ShowConfirm("Plan changed",
			"The floor plan image changed on disk. Reload it?",
			func(ok bool) {
				if ok {
					mw.loadPlan(path)
				}
			}, mw.Window)
	})
	w.Start()
	mw.watcher = w
}

func (mw *MainWindow) stopWatcher() {
	if mw.watcher != nil {
		mw.watcher.Stop()
		mw.watcher = nil
	}
}

// Report export

func (mw *MainWindow) exportReports(part *project.Part, sub *project.SubPart) {
	if mw.state.Project == nil {
		return
	}
	// Make sure the slot being exported carries the on-screen edits.
	if sub == mw.state.CurrentSubPart() {
		mw.commitScene()
	}

	exp := report.NewExporter(mw.state.Project, part, sub,
		config.GetString("report.templatePath"),
		config.GetString("report.outputDir"),
		mw.log)

	visual, err := exp.ExportVisualInspection()
	if err != nil {
		dialog.ShowError(fmt.Errorf("visual inspection report: %w", err), mw.Window)
		return
	}
	drawing, err := exp.ExportDefectDrawing()
	if err != nil {
		dialog.ShowError(fmt.Errorf("defect drawing report: %w", err), mw.Window)
		return
	}
	dialog.ShowInformation("Reports exported",
		fmt.Sprintf("%s\n%s", visual, drawing), mw.Window)
}
