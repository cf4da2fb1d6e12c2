package canvas

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"plan-marker/internal/config"
	"plan-marker/internal/editor"
	"plan-marker/pkg/geometry"
)

func newTestCanvas() *PlanCanvas {
	test.NewApp()
	ed := editor.NewEditor(config.GetTuning(), zerolog.Nop())
	ed.SetImage("plan.png", geometry.NewSize(800, 600))
	ed.ResetBaseline()
	return NewPlanCanvas(ed)
}

// The deadline ticker runs on its own goroutine while pointer intents arrive
// on the event thread; both paths must serialize on the canvas mutex.
func TestTickAndDispatchSerialize(t *testing.T) {
	pc := newTestCanvas()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 300; i++ {
			pc.tick(time.Now())
		}
	}()

	for i := 0; i < 100; i++ {
		x := float64(50 + (i%10)*60)
		pc.dispatch(editor.Intent{Kind: editor.IntentPress, At: geometry.Point2D{X: x, Y: 100}})
		pc.dispatch(editor.Intent{Kind: editor.IntentMove, At: geometry.Point2D{X: x + 40, Y: 140}})
		pc.dispatch(editor.Intent{Kind: editor.IntentRelease, At: geometry.Point2D{X: x + 40, Y: 140}})
	}
	<-done

	assert.Greater(t, pc.ed.Zoom(), 0.0)
}
