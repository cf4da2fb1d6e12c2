package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-marker/internal/project"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	s := NewState(t.TempDir(), zerolog.Nop())
	require.NoError(t, s.LoadRegistry())
	return s
}

func TestCreateAndReopenProject(t *testing.T) {
	s := newTestState(t)

	proj, err := s.CreateProject("City Hall")
	require.NoError(t, err)
	assert.Equal(t, []string{proj.ID}, s.ProjectIDs())
	assert.False(t, s.Modified)

	// A fresh state over the same data dir sees the registered project.
	s2 := NewState(s.DataDir, zerolog.Nop())
	require.NoError(t, s2.LoadRegistry())
	require.NoError(t, s2.OpenProject(proj.ID))
	assert.Equal(t, "City Hall", s2.Project.Building.Name)
}

func TestOpenUnknownProject(t *testing.T) {
	s := newTestState(t)
	require.Error(t, s.OpenProject("proj_missing"))
}

func TestSaveProjectClearsModified(t *testing.T) {
	s := newTestState(t)
	_, err := s.CreateProject("B")
	require.NoError(t, err)

	var events []bool
	s.On(EventModified, func(data interface{}) {
		events = append(events, data.(bool))
	})

	s.SetModified(true)
	require.NoError(t, s.SaveProject())

	assert.False(t, s.Modified)
	assert.Equal(t, []bool{true, false}, events)
}

func TestSetModifiedEmitsOnlyOnChange(t *testing.T) {
	s := newTestState(t)
	count := 0
	s.On(EventModified, func(interface{}) { count++ })

	s.SetModified(true)
	s.SetModified(true)
	assert.Equal(t, 1, count)
}

func TestDeleteProject(t *testing.T) {
	s := newTestState(t)
	proj, err := s.CreateProject("B")
	require.NoError(t, err)
	path := s.ProjectPath

	closed := false
	s.On(EventProjectClosed, func(interface{}) { closed = true })

	require.NoError(t, s.DeleteProject(proj.ID))
	assert.Empty(t, s.ProjectIDs())
	assert.Nil(t, s.Project)
	assert.True(t, closed)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSelectSubPart(t *testing.T) {
	s := newTestState(t)
	proj, err := s.CreateProject("B")
	require.NoError(t, err)

	sub := &project.SubPart{ID: "sp1", Name: "Floor 1"}
	proj.Parts = append(proj.Parts, &project.Part{
		ID: "p1", Name: "Wing A", SubParts: []*project.SubPart{sub},
	})

	selected := ""
	s.On(EventSelectionChanged, func(data interface{}) {
		selected = data.(string)
	})

	require.NoError(t, s.SelectSubPart("p1", "sp1", "2024-01"))
	assert.Equal(t, "sp1", selected)
	assert.Equal(t, sub, s.CurrentSubPart())
	assert.Equal(t, "p1", s.CurrentPart().ID)

	// Selection created the inspection slot.
	_, ok := sub.Inspections["2024-01"]
	assert.True(t, ok)

	require.Error(t, s.SelectSubPart("p1", "nope", "2024-01"))
}

func TestPlanWatcherDetectsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.png")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	w := NewPlanWatcher(path, time.Hour)
	require.NotNil(t, w)
	assert.False(t, w.checkForUpdate())

	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))
	assert.True(t, w.checkForUpdate())

	w.ResetBaseline()
	assert.False(t, w.checkForUpdate())
}

func TestPlanWatcherMissingFile(t *testing.T) {
	assert.Nil(t, NewPlanWatcher(filepath.Join(t.TempDir(), "nope.png"), time.Second))
}

func TestProjectLoadedEventCarriesProject(t *testing.T) {
	s := newTestState(t)
	proj, err := s.CreateProject("City Hall")
	require.NoError(t, err)

	var gotPath string
	var gotProj *project.Project
	s.On(EventProjectLoaded, func(data interface{}) {
		gotProj, _ = data.(*project.Project)
		gotPath = s.ProjectPath
	})

	require.NoError(t, s.OpenProject(proj.ID))

	// Subscribers read the loaded project from the payload and the path
	// from the state, both settled before the event fires.
	require.NotNil(t, gotProj)
	assert.Equal(t, proj.ID, gotProj.ID)
	assert.Equal(t, filepath.Join(s.DataDir, proj.ID+".json"), gotPath)
}
