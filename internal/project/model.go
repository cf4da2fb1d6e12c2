// Package project defines the building inspection data model and its persistence.
//
// A project describes one building. Each part of the building (a wing, a
// floor) holds sub-parts, and each sub-part carries a floor plan image plus
// any number of inspections keyed by an inspection id. An inspection stores
// the annotated defect data for that plan at one point in time.
package project

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// NewID returns a fresh identifier of the form "prefix_a1b2c3d4e5".
func NewID(prefix string) string {
	u := uuid.New()
	return prefix + "_" + hex.EncodeToString(u[:])[:10]
}

// BuildingInfo holds the descriptive metadata of the inspected building.
type BuildingInfo struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Location string   `json:"location"`
	Memo     string   `json:"memo"`
	Photos   []string `json:"photos"`
}

// Inspection is one survey pass over a sub-part's floor plan. Defects holds
// the annotation payload as raw JSON so the model stays independent of the
// editor's snapshot format.
type Inspection struct {
	Name      string          `json:"name,omitempty"`
	StartDate string          `json:"start_date,omitempty"`
	EndDate   *string         `json:"end_date,omitempty"`
	Defects   json.RawMessage `json:"defects"`
}

var emptyObject = json.RawMessage("{}")

// UnmarshalJSON tolerates two legacy encodings: a null value, and an object
// without a "defects" key where the whole object is the defect payload.
func (ins *Inspection) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*ins = Inspection{Defects: append(json.RawMessage(nil), emptyObject...)}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if _, ok := fields["defects"]; !ok {
		*ins = Inspection{Defects: append(json.RawMessage(nil), data...)}
		return nil
	}

	type alias Inspection
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*ins = Inspection(a)
	if len(ins.Defects) == 0 || bytes.Equal(bytes.TrimSpace(ins.Defects), []byte("null")) {
		ins.Defects = append(json.RawMessage(nil), emptyObject...)
	}
	return nil
}

// clone returns a deep copy of the inspection.
func (ins *Inspection) clone() *Inspection {
	cp := *ins
	cp.Defects = append(json.RawMessage(nil), ins.Defects...)
	if ins.EndDate != nil {
		end := *ins.EndDate
		cp.EndDate = &end
	}
	return &cp
}

// SubPart is one floor plan within a part of the building.
type SubPart struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	ImagePath   string                 `json:"image_path"`
	Inspections map[string]*Inspection `json:"inspections"`
}

// DefaultInspection is the key legacy single-survey data is migrated under.
const DefaultInspection = "DEFAULT"

// UnmarshalJSON migrates the pre-inspection format where the sub-part held a
// bare "defects" map: when no inspections are present, that map becomes the
// DEFAULT inspection.
func (sp *SubPart) UnmarshalJSON(data []byte) error {
	type alias SubPart
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*sp = SubPart(a)

	if len(sp.Inspections) == 0 {
		var legacy struct {
			Defects json.RawMessage `json:"defects"`
		}
		if err := json.Unmarshal(data, &legacy); err == nil && len(legacy.Defects) > 0 &&
			!bytes.Equal(bytes.TrimSpace(legacy.Defects), []byte("null")) {
			sp.Inspections = map[string]*Inspection{
				DefaultInspection: {Defects: append(json.RawMessage(nil), legacy.Defects...)},
			}
		}
	}

	sp.Normalize()
	return nil
}

// Normalize guarantees every inspection value exists and carries a non-nil
// defect payload.
func (sp *SubPart) Normalize() {
	if sp.Inspections == nil {
		sp.Inspections = map[string]*Inspection{}
	}
	for k, v := range sp.Inspections {
		if v == nil {
			sp.Inspections[k] = &Inspection{Defects: append(json.RawMessage(nil), emptyObject...)}
			continue
		}
		if len(v.Defects) == 0 || bytes.Equal(bytes.TrimSpace(v.Defects), []byte("null")) {
			v.Defects = append(json.RawMessage(nil), emptyObject...)
		}
	}
}

// EnsureInspection creates the inspection under key if it does not exist yet.
func (sp *SubPart) EnsureInspection(key string) {
	if sp.Inspections == nil {
		sp.Inspections = map[string]*Inspection{}
	}
	if _, ok := sp.Inspections[key]; !ok {
		sp.Inspections[key] = &Inspection{Defects: append(json.RawMessage(nil), emptyObject...)}
	}
	sp.Normalize()
}

// InspectionKeys returns the inspection ids in sorted order.
func (sp *SubPart) InspectionKeys() []string {
	keys := make([]string, 0, len(sp.Inspections))
	for k := range sp.Inspections {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Defects returns the defect payload of the given inspection, creating the
// inspection if needed.
func (sp *SubPart) Defects(key string) json.RawMessage {
	sp.EnsureInspection(key)
	return sp.Inspections[key].Defects
}

// SetDefects replaces the defect payload of the given inspection.
func (sp *SubPart) SetDefects(key string, defects json.RawMessage) {
	sp.EnsureInspection(key)
	if len(defects) == 0 {
		defects = emptyObject
	}
	sp.Inspections[key].Defects = append(json.RawMessage(nil), defects...)
}

// CopyInspection duplicates the src inspection under dst. The destination
// must not exist.
func (sp *SubPart) CopyInspection(src, dst string) error {
	sp.EnsureInspection(src)
	if _, ok := sp.Inspections[dst]; ok {
		return fmt.Errorf("inspection already exists: %s", dst)
	}
	sp.Inspections[dst] = sp.Inspections[src].clone()
	sp.Normalize()
	return nil
}

// Part is a named section of the building holding one or more sub-parts.
type Part struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	SubParts []*SubPart `json:"subparts"`
}

// UnmarshalJSON migrates the oldest format where the part itself carried the
// floor plan and defect map: such a part gains a single synthetic sub-part
// with a DEFAULT inspection.
func (p *Part) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if _, ok := fields["subparts"]; ok {
		type alias Part
		var a alias
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		*p = Part(a)
		return nil
	}

	var legacy struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		ImagePath string          `json:"image_path"`
		Defects   json.RawMessage `json:"defects"`
	}
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}

	defects := legacy.Defects
	if len(defects) == 0 || bytes.Equal(bytes.TrimSpace(defects), []byte("null")) {
		defects = emptyObject
	}
	sp := &SubPart{
		ID:        NewID("subpart"),
		Name:      legacy.Name,
		ImagePath: legacy.ImagePath,
		Inspections: map[string]*Inspection{
			DefaultInspection: {Defects: append(json.RawMessage(nil), defects...)},
		},
	}
	sp.Normalize()

	*p = Part{ID: legacy.ID, Name: legacy.Name, SubParts: []*SubPart{sp}}
	return nil
}

// SubPartByID returns the sub-part with the given id, or nil.
func (p *Part) SubPartByID(id string) *SubPart {
	for _, sp := range p.SubParts {
		if sp.ID == id {
			return sp
		}
	}
	return nil
}

// Project is the root of a building inspection data set.
type Project struct {
	ID       string       `json:"id"`
	Building BuildingInfo `json:"building"`
	Parts    []*Part      `json:"parts"`
}

// New creates an empty project with a fresh id.
func New() *Project {
	return &Project{ID: NewID("proj"), Parts: []*Part{}}
}

// Normalize fills in missing ids and repairs inspection maps after loading.
func (p *Project) Normalize() {
	if p.ID == "" {
		p.ID = NewID("proj")
	}
	if p.Parts == nil {
		p.Parts = []*Part{}
	}
	for _, part := range p.Parts {
		if part.ID == "" {
			part.ID = NewID("part")
		}
		for _, sp := range part.SubParts {
			if sp.ID == "" {
				sp.ID = NewID("subpart")
			}
			sp.Normalize()
		}
	}
}

// PartByID returns the part with the given id, or nil.
func (p *Project) PartByID(id string) *Part {
	for _, part := range p.Parts {
		if part.ID == id {
			return part
		}
	}
	return nil
}
