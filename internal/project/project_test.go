package project

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	id := NewID("proj")
	require.True(t, strings.HasPrefix(id, "proj_"))
	assert.Len(t, strings.TrimPrefix(id, "proj_"), 10)
	assert.NotEqual(t, id, NewID("proj"))
}

func TestLegacySubPartDefectsMigration(t *testing.T) {
	raw := `{
		"id": "proj_abc",
		"building": {"name": "North Annex"},
		"parts": [{
			"id": "part_1",
			"name": "Wing A",
			"subparts": [{
				"id": "subpart_1",
				"name": "Floor 2",
				"image_path": "plans/f2.png",
				"defects": {"items": [{"type": "CircleMark", "x": 10, "y": 20}]}
			}]
		}]
	}`

	var proj Project
	require.NoError(t, json.Unmarshal([]byte(raw), &proj))

	sp := proj.Parts[0].SubParts[0]
	require.Len(t, sp.Inspections, 1)
	ins, ok := sp.Inspections[DefaultInspection]
	require.True(t, ok)

	var payload struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(ins.Defects, &payload))
	require.Len(t, payload.Items, 1)
	assert.Equal(t, "CircleMark", payload.Items[0]["type"])
}

func TestLegacySubPartKeepsExistingInspections(t *testing.T) {
	// A bare defects map must not clobber inspections that are present.
	raw := `{
		"id": "sp1",
		"name": "Floor 1",
		"image_path": "f1.png",
		"defects": {"items": []},
		"inspections": {"2024-01": {"defects": {"items": [1]}}}
	}`

	var sp SubPart
	require.NoError(t, json.Unmarshal([]byte(raw), &sp))
	require.Len(t, sp.Inspections, 1)
	_, ok := sp.Inspections["2024-01"]
	assert.True(t, ok)
}

func TestLegacyPartWithoutSubParts(t *testing.T) {
	raw := `{
		"id": "proj_old",
		"parts": [{
			"id": "part_1",
			"name": "Main Building",
			"image_path": "plans/main.png",
			"defects": {"items": [{"type": "SquareMark"}]}
		}]
	}`

	var proj Project
	require.NoError(t, json.Unmarshal([]byte(raw), &proj))

	part := proj.Parts[0]
	require.Len(t, part.SubParts, 1)
	sp := part.SubParts[0]
	assert.Equal(t, "Main Building", sp.Name)
	assert.Equal(t, "plans/main.png", sp.ImagePath)
	assert.True(t, strings.HasPrefix(sp.ID, "subpart_"))

	require.Len(t, sp.Inspections, 1)
	ins := sp.Inspections[DefaultInspection]
	require.NotNil(t, ins)
	assert.JSONEq(t, `{"items": [{"type": "SquareMark"}]}`, string(ins.Defects))
}

func TestInspectionWithoutDefectsKeyIsWrapped(t *testing.T) {
	raw := `{
		"id": "sp1",
		"name": "Floor 1",
		"image_path": "f1.png",
		"inspections": {
			"2024-01": {"items": [{"type": "CircleMark"}]},
			"2024-06": null
		}
	}`

	var sp SubPart
	require.NoError(t, json.Unmarshal([]byte(raw), &sp))

	assert.JSONEq(t, `{"items": [{"type": "CircleMark"}]}`, string(sp.Inspections["2024-01"].Defects))
	assert.JSONEq(t, `{}`, string(sp.Inspections["2024-06"].Defects))
}

func TestEnsureAndListInspections(t *testing.T) {
	sp := &SubPart{ID: "sp1"}
	sp.EnsureInspection("2024-06")
	sp.EnsureInspection("2024-01")
	sp.EnsureInspection("2024-01")

	assert.Equal(t, []string{"2024-01", "2024-06"}, sp.InspectionKeys())
	assert.JSONEq(t, `{}`, string(sp.Defects("2024-01")))
}

func TestSetDefects(t *testing.T) {
	sp := &SubPart{ID: "sp1"}
	sp.SetDefects("2024-01", json.RawMessage(`{"items": [1, 2]}`))
	assert.JSONEq(t, `{"items": [1, 2]}`, string(sp.Defects("2024-01")))

	sp.SetDefects("2024-01", nil)
	assert.JSONEq(t, `{}`, string(sp.Defects("2024-01")))
}

func TestCopyInspection(t *testing.T) {
	end := "2024-02-01"
	sp := &SubPart{
		ID: "sp1",
		Inspections: map[string]*Inspection{
			"2024-01": {
				Name:      "Winter survey",
				StartDate: "2024-01-15",
				EndDate:   &end,
				Defects:   json.RawMessage(`{"items": [1]}`),
			},
		},
	}

	require.NoError(t, sp.CopyInspection("2024-01", "2024-06"))

	cp := sp.Inspections["2024-06"]
	require.NotNil(t, cp)
	assert.Equal(t, "Winter survey", cp.Name)
	assert.JSONEq(t, `{"items": [1]}`, string(cp.Defects))

	// The copy must be independent of the source.
	sp.SetDefects("2024-06", json.RawMessage(`{"items": [1, 2]}`))
	assert.JSONEq(t, `{"items": [1]}`, string(sp.Inspections["2024-01"].Defects))

	err := sp.CopyInspection("2024-01", "2024-06")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	proj := New()
	proj.Building = BuildingInfo{Name: "City Hall", Address: "1 Plaza"}
	sp := &SubPart{ID: NewID("subpart"), Name: "Floor 1", ImagePath: "f1.png"}
	sp.SetDefects("2024-01", json.RawMessage(`{"items": [{"type": "CircleMark", "x": 3}]}`))
	proj.Parts = append(proj.Parts, &Part{
		ID:       NewID("part"),
		Name:     "Wing A",
		SubParts: []*SubPart{sp},
	})

	path := filepath.Join(t.TempDir(), "nested", "proj.json")
	require.NoError(t, proj.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, proj.ID, loaded.ID)
	assert.Equal(t, "City Hall", loaded.Building.Name)
	require.Len(t, loaded.Parts, 1)

	got := loaded.Parts[0].SubPartByID(sp.ID)
	require.NotNil(t, got)
	assert.JSONEq(t, string(sp.Defects("2024-01")), string(got.Defects("2024-01")))
}

func TestLoadMissingProject(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")

	index, err := LoadIndex(path)
	require.NoError(t, err)
	assert.Empty(t, index)

	index["proj_abc"] = filepath.Join(dir, "proj.json")
	require.NoError(t, SaveIndex(index, path))

	loaded, err := LoadIndex(path)
	require.NoError(t, err)
	assert.Equal(t, index, loaded)
}
