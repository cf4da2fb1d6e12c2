package app

import (
	"os"
	"time"
)

// PlanWatcher watches a floor plan image file for changes and triggers a
// callback when a newer version is written. Plans are routinely re-exported
// from CAD while annotation is in progress; the canvas uses this to offer a
// reload instead of drawing over a stale image.
type PlanWatcher struct {
	path          string
	baseline      time.Time
	checkInterval time.Duration
	stopCh        chan struct{}
	onChanged     func()
}

// NewPlanWatcher creates a watcher for the given image file. Returns nil if
// the file cannot be stat'd.
func NewPlanWatcher(path string, checkInterval time.Duration) *PlanWatcher {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}

	return &PlanWatcher{
		path:          path,
		baseline:      info.ModTime(),
		checkInterval: checkInterval,
		stopCh:        make(chan struct{}),
	}
}

// OnChanged sets the callback to invoke when the file changes. The callback
// is called from a background goroutine - use appropriate synchronization if
// updating UI.
func (w *PlanWatcher) OnChanged(callback func()) {
	w.onChanged = callback
}

// Start begins watching in a background goroutine.
func (w *PlanWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.watchLoop()
}

// Stop stops the watcher goroutine.
func (w *PlanWatcher) Stop() {
	close(w.stopCh)
}

func (w *PlanWatcher) watchLoop() {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.checkForUpdate() {
				w.ResetBaseline()
				if w.onChanged != nil {
					w.onChanged()
				}
			}
		}
	}
}

// checkForUpdate returns true if the file has been modified since the
// baseline.
func (w *PlanWatcher) checkForUpdate() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	return info.ModTime().After(w.baseline)
}

// Path returns the watched file path.
func (w *PlanWatcher) Path() string {
	return w.path
}

// ResetBaseline updates the baseline timestamp to the file's current mod
// time. Call this after reloading, or when the user declines a reload, to
// avoid repeated notifications.
func (w *PlanWatcher) ResetBaseline() {
	if info, err := os.Stat(w.path); err == nil {
		w.baseline = info.ModTime()
	}
}
