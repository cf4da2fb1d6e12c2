// Package dialogs provides application dialogs.
package dialogs

import (
	"errors"
	"regexp"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// InspectionInfo carries the metadata collected by the inspection form.
type InspectionInfo struct {
	Name      string
	StartDate string
	EndDate   *string
}

// ShowInspectionForm collects inspection metadata. The end date is optional;
// an empty entry yields a nil EndDate.
func ShowInspectionForm(win fyne.Window, initial InspectionInfo, onSubmit func(InspectionInfo)) {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(initial.Name)

	startEntry := widget.NewEntry()
	startEntry.SetPlaceHolder("yyyy-MM-dd")
	startEntry.SetText(initial.StartDate)
	startEntry.Validator = func(s string) error {
		if s == "" || datePattern.MatchString(s) {
			return nil
		}
		return errors.New("use yyyy-MM-dd")
	}

	endEntry := widget.NewEntry()
	endEntry.SetPlaceHolder("yyyy-MM-dd (optional)")
	if initial.EndDate != nil {
		endEntry.SetText(*initial.EndDate)
	}
	endEntry.Validator = func(s string) error {
		if s == "" || datePattern.MatchString(s) {
			return nil
		}
		return errors.New("use yyyy-MM-dd")
	}

	items := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("Start date", startEntry),
		widget.NewFormItem("End date", endEntry),
	}
	dialog.ShowForm("Inspection", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		info := InspectionInfo{Name: nameEntry.Text, StartDate: startEntry.Text}
		if endEntry.Text != "" {
			end := endEntry.Text
			info.EndDate = &end
		}
		onSubmit(info)
	}, win)
}

// ShowSubPartForm collects a sub-part name and its floor plan image path.
func ShowSubPartForm(win fyne.Window, onSubmit func(name, imagePath string)) {
	nameEntry := widget.NewEntry()
	pathEntry := widget.NewEntry()
	pathEntry.SetPlaceHolder("path to floor plan image")

	items := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("Plan image", pathEntry),
	}
	dialog.ShowForm("New sub-part", "Create", "Cancel", items, func(ok bool) {
		if !ok || nameEntry.Text == "" {
			return
		}
		onSubmit(nameEntry.Text, pathEntry.Text)
	}, win)
}

// ShowLabelEdit edits the free text attached to a mark label.
func ShowLabelEdit(win fyne.Window, current string, onSubmit func(text string)) {
	entry := widget.NewMultiLineEntry()
	entry.SetText(current)
	entry.SetMinRowsVisible(3)

	d := dialog.NewForm("Edit label", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Text", entry)},
		func(ok bool) {
			if ok {
				onSubmit(entry.Text)
			}
		}, win)
	d.Resize(fyne.NewSize(420, 220))
	d.Show()
}
