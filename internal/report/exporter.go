package report

import (
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	planimg "plan-marker/internal/image"
	"plan-marker/internal/mark"
	"plan-marker/internal/project"
	"plan-marker/pkg/geometry"
)

const (
	// Template file names expected under the templates directory.
	VisualTemplateName  = "visual_inspection_template.hwpx"
	DrawingTemplateName = "defect_drawing_template.hwpx"
)

// Exporter produces the two report documents for one sub-part: the visual
// inspection defect table and the annotated defect drawing.
type Exporter struct {
	Project *project.Project
	Part    *project.Part
	Sub     *project.SubPart

	TemplatesDir string
	OutputDir    string

	log zerolog.Logger
}

// NewExporter creates an exporter writing into outputDir.
func NewExporter(proj *project.Project, part *project.Part, sub *project.SubPart, templatesDir, outputDir string, log zerolog.Logger) *Exporter {
	return &Exporter{
		Project:      proj,
		Part:         part,
		Sub:          sub,
		TemplatesDir: templatesDir,
		OutputDir:    outputDir,
		log:          log,
	}
}

func (e *Exporter) baseFilename() string {
	projectName := e.Project.Building.Name
	if projectName == "" {
		projectName = "project"
	}
	partName := e.Part.Name
	if partName == "" {
		partName = "part"
	}
	subName := e.Sub.Name
	if subName == "" {
		subName = "subpart"
	}
	return fmt.Sprintf("%s-%s-%s", projectName, partName, subName)
}

// pickInspectionKey selects the most recent inspection, ordering by start
// date and falling back to the key itself.
func (e *Exporter) pickInspectionKey() (string, bool) {
	if len(e.Sub.Inspections) == 0 {
		return "", false
	}

	type entry struct {
		key   string
		start string
	}
	entries := make([]entry, 0, len(e.Sub.Inspections))
	for k, v := range e.Sub.Inspections {
		start := ""
		if v != nil {
			start = v.StartDate
		}
		entries = append(entries, entry{key: k, start: start})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].start != entries[j].start {
			return entries[i].start < entries[j].start
		}
		return entries[i].key < entries[j].key
	})
	return entries[len(entries)-1].key, true
}

// ExportVisualInspection renders the defect table document and returns its
// path.
func (e *Exporter) ExportVisualInspection() (string, error) {
	var rows []DefectRow
	inspName := ""
	if key, ok := e.pickInspectionKey(); ok {
		ins := e.Sub.Inspections[key]
		rows = ExtractRows(ins.Defects)
		inspName = ins.Name
		if inspName == "" {
			inspName = key
		}
	}

	payload := map[string]any{
		"columns": []string{
			"No", "Location", "Member", "Type", "Width (mm)",
			"Length (m)", "Count (EA)", "Progress (O/X)", "Note",
		},
		"rows":    rows,
		"summary": Summarize(rows),
	}
	table, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode table: %w", err)
	}

	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	outPath := filepath.Join(e.OutputDir, e.baseFilename()+"-visual-inspection.hwpx")

	engine := NewTemplateEngine(filepath.Join(e.TemplatesDir, VisualTemplateName))
	err = engine.Render(outPath, map[string]string{
		"__TITLE__":      "Visual Inspection Defect Summary",
		"__SUB_HEADER__": fmt.Sprintf("[%s %s] (%s)", e.Part.Name, e.Sub.Name, inspName),
		"__TABLE_JSON__": string(table),
	})
	if err != nil {
		return "", err
	}

	e.log.Info().Str("path", outPath).Int("rows", len(rows)).Msg("exported visual inspection report")
	return outPath, nil
}

// ExportDefectDrawing renders the drawing document and returns its path.
// When the plan image can be loaded, the embedded image is a freshly
// rendered annotated copy; otherwise the raw plan path is used.
func (e *Exporter) ExportDefectDrawing() (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	imagePath := e.Sub.ImagePath
	if rendered, err := e.renderAnnotatedPlan(); err == nil && rendered != "" {
		imagePath = rendered
	} else if err != nil {
		e.log.Warn().Err(err).Msg("annotated plan render failed, embedding raw plan")
	}

	outPath := filepath.Join(e.OutputDir, e.baseFilename()+"-defect-drawing.hwpx")

	engine := NewTemplateEngine(filepath.Join(e.TemplatesDir, DrawingTemplateName))
	err := engine.Render(outPath, map[string]string{
		"__TITLE__":      "Defect Drawing",
		"__SUB_HEADER__": fmt.Sprintf("[%s %s]", e.Part.Name, e.Sub.Name),
		"__IMAGE_PATH__": imagePath,
	})
	if err != nil {
		return "", err
	}

	e.log.Info().Str("path", outPath).Str("image", imagePath).Msg("exported defect drawing")
	return outPath, nil
}

// renderAnnotatedPlan draws the latest inspection's marks onto the plan and
// writes the result as a PNG next to the reports.
func (e *Exporter) renderAnnotatedPlan() (string, error) {
	if e.Sub.ImagePath == "" {
		return "", nil
	}

	key, ok := e.pickInspectionKey()
	if !ok {
		return "", nil
	}

	plan, err := planimg.Load(e.Sub.ImagePath)
	if err != nil {
		return "", err
	}

	marks, memos := buildScene(e.Sub.Inspections[key].Defects)
	rendered := planimg.NewAnnotator().Render(plan, marks, memos)

	outPath := filepath.Join(e.OutputDir, e.baseFilename()+"-annotated.png")
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create annotated plan: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, rendered); err != nil {
		return "", fmt.Errorf("encode annotated plan: %w", err)
	}
	return outPath, nil
}

// buildScene reconstructs drawable marks and memos from a defect snapshot.
// Leader lines are taken from the stored endpoints as-is.
func buildScene(defects json.RawMessage) ([]mark.Mark, []mark.Memo) {
	var snap struct {
		Items []mark.Record     `json:"items"`
		Memos []mark.MemoRecord `json:"memos"`
	}
	if err := json.Unmarshal(defects, &snap); err != nil {
		return nil, nil
	}

	var marks []mark.Mark
	for _, rec := range snap.Items {
		m, ok := mark.FromRecord(rec)
		if !ok {
			continue
		}
		if rec.Scale > 0 {
			m.SetScale(rec.Scale)
		}
		m.SetRotation(rec.Rotation)

		if c, isCircle := m.(*mark.CircleMark); isCircle {
			if n, ok := mark.DisplayIDNumber(rec.DisplayID); ok {
				c.SetDisplayID(n)
			}
			if rec.DefectInfo != nil {
				c.Info = *rec.DefectInfo
				c.EnableLabel(c.Info.Member)
			}
		} else if s, isString := rec.DisplayID.(string); isString && s != "" {
			if owner, isOwner := m.(mark.LabelOwner); isOwner {
				owner.EnableLabel(s)
			}
		}

		if rec.Line != nil {
			if owner, isOwner := m.(mark.LeaderLineOwner); isOwner {
				owner.SetLeader(&mark.LeaderLine{
					Anchor: geometry.Point2D{X: rec.Line.P1[0], Y: rec.Line.P1[1]},
					End:    geometry.Point2D{X: rec.Line.P2[0], Y: rec.Line.P2[1]},
				})
			}
		}
		mark.SyncLabel(m)
		marks = append(marks, m)
	}

	var memos []mark.Memo
	for _, rec := range snap.Memos {
		if memo := mark.MemoFromRecord(rec); memo != nil {
			memos = append(memos, memo)
		}
	}
	return marks, memos
}
