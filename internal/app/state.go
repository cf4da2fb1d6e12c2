// Package app provides application lifecycle management, project registry,
// and events.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"plan-marker/internal/project"
)

// State holds the application state: the project registry, the open project,
// and the current part/sub-part/inspection selection.
type State struct {
	mu  sync.RWMutex
	log zerolog.Logger

	// Registry
	DataDir string
	index   map[string]string // project id -> file path

	// Open project
	Project     *project.Project
	ProjectPath string
	Modified    bool

	// Selection
	CurrentPartID     string
	CurrentSubPartID  string
	CurrentInspection string

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventProjectLoaded EventType = iota
	EventProjectSaved
	EventProjectClosed
	EventRegistryChanged
	EventSelectionChanged
	EventInspectionsChanged
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates the application state rooted at dataDir.
func NewState(dataDir string, log zerolog.Logger) *State {
	return &State{
		log:       log,
		DataDir:   dataDir,
		index:     make(map[string]string),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	changed := s.Modified != modified
	s.Modified = modified
	s.mu.Unlock()
	if changed {
		s.Emit(EventModified, modified)
	}
}

func (s *State) indexPath() string {
	return filepath.Join(s.DataDir, "index.json")
}

// LoadRegistry reads the project index from the data directory. A missing
// index yields an empty registry.
func (s *State) LoadRegistry() error {
	index, err := project.LoadIndex(s.indexPath())
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()

	s.log.Debug().Int("projects", len(index)).Msg("project registry loaded")
	s.Emit(EventRegistryChanged, nil)
	return nil
}

func (s *State) saveRegistry() error {
	s.mu.RLock()
	index := make(map[string]string, len(s.index))
	for k, v := range s.index {
		index[k] = v
	}
	s.mu.RUnlock()
	return project.SaveIndex(index, s.indexPath())
}

// ProjectIDs returns the registered project ids in sorted order.
func (s *State) ProjectIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.index))
	for id := range s.index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ProjectPathFor returns the file path registered for the given project id.
func (s *State) ProjectPathFor(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	path, ok := s.index[id]
	return path, ok
}

// CreateProject creates, registers, and opens a new project.
func (s *State) CreateProject(buildingName string) (*project.Project, error) {
	proj := project.New()
	proj.Building.Name = buildingName

	path := filepath.Join(s.DataDir, proj.ID+".json")
	if err := proj.Save(path); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.index[proj.ID] = path
	s.Project = proj
	s.ProjectPath = path
	s.Modified = false
	s.CurrentPartID = ""
	s.CurrentSubPartID = ""
	s.CurrentInspection = ""
	s.mu.Unlock()

	if err := s.saveRegistry(); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", proj.ID).Str("path", path).Msg("project created")
	s.Emit(EventRegistryChanged, nil)
	s.Emit(EventProjectLoaded, proj)
	return proj, nil
}

// OpenProject loads the registered project with the given id.
func (s *State) OpenProject(id string) error {
	path, ok := s.ProjectPathFor(id)
	if !ok {
		return fmt.Errorf("unknown project: %s", id)
	}
	return s.OpenProjectFile(path)
}

// OpenProjectFile loads a project from an explicit path and registers it.
func (s *State) OpenProjectFile(path string) error {
	proj, err := project.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.index[proj.ID] = path
	s.Project = proj
	s.ProjectPath = path
	s.Modified = false
	s.CurrentPartID = ""
	s.CurrentSubPartID = ""
	s.CurrentInspection = ""
	s.mu.Unlock()

	if err := s.saveRegistry(); err != nil {
		return err
	}

	s.log.Info().Str("id", proj.ID).Str("path", path).Msg("project opened")
	s.Emit(EventRegistryChanged, nil)
	s.Emit(EventProjectLoaded, proj)
	return nil
}

// SaveProject persists the open project and clears the modified flag.
func (s *State) SaveProject() error {
	s.mu.RLock()
	proj := s.Project
	path := s.ProjectPath
	s.mu.RUnlock()

	if proj == nil {
		return fmt.Errorf("no project open")
	}
	if err := proj.Save(path); err != nil {
		return err
	}

	s.SetModified(false)
	s.log.Info().Str("id", proj.ID).Msg("project saved")
	s.Emit(EventProjectSaved, proj)
	return nil
}

// CloseProject drops the open project without saving.
func (s *State) CloseProject() {
	s.mu.Lock()
	s.Project = nil
	s.ProjectPath = ""
	s.Modified = false
	s.CurrentPartID = ""
	s.CurrentSubPartID = ""
	s.CurrentInspection = ""
	s.mu.Unlock()
	s.Emit(EventProjectClosed, nil)
}

// DeleteProject removes a project from the registry and deletes its file.
func (s *State) DeleteProject(id string) error {
	path, ok := s.ProjectPathFor(id)
	if !ok {
		return fmt.Errorf("unknown project: %s", id)
	}

	s.mu.Lock()
	delete(s.index, id)
	closing := s.Project != nil && s.Project.ID == id
	s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete project file: %w", err)
	}
	if err := s.saveRegistry(); err != nil {
		return err
	}

	if closing {
		s.CloseProject()
	}
	s.log.Info().Str("id", id).Msg("project deleted")
	s.Emit(EventRegistryChanged, nil)
	return nil
}

// SelectSubPart sets the current part, sub-part, and inspection.
func (s *State) SelectSubPart(partID, subPartID, inspection string) error {
	s.mu.Lock()
	if s.Project == nil {
		s.mu.Unlock()
		return fmt.Errorf("no project open")
	}
	part := s.Project.PartByID(partID)
	if part == nil {
		s.mu.Unlock()
		return fmt.Errorf("unknown part: %s", partID)
	}
	sub := part.SubPartByID(subPartID)
	if sub == nil {
		s.mu.Unlock()
		return fmt.Errorf("unknown sub-part: %s", subPartID)
	}
	sub.EnsureInspection(inspection)
	s.CurrentPartID = partID
	s.CurrentSubPartID = subPartID
	s.CurrentInspection = inspection
	s.mu.Unlock()

	s.Emit(EventSelectionChanged, subPartID)
	return nil
}

// CurrentSubPart returns the currently selected sub-part, or nil.
func (s *State) CurrentSubPart() *project.SubPart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Project == nil {
		return nil
	}
	part := s.Project.PartByID(s.CurrentPartID)
	if part == nil {
		return nil
	}
	return part.SubPartByID(s.CurrentSubPartID)
}

// CurrentPart returns the currently selected part, or nil.
func (s *State) CurrentPart() *project.Part {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Project == nil {
		return nil
	}
	return s.Project.PartByID(s.CurrentPartID)
}
