package mark

import (
	"strconv"
	"strings"

	"plan-marker/pkg/geometry"
)

// SizeInfo holds free-text defect dimensions as entered by the inspector.
type SizeInfo struct {
	WidthMM string `json:"width_mm"`
	LengthM string `json:"length_m"`
	CountEA string `json:"count_ea"`
}

// DefectInfo is the structured metadata attached to a point-defect mark.
type DefectInfo struct {
	Member     string   `json:"member"`
	Location   string   `json:"location"`
	DefectType string   `json:"defect_type"`
	Size       SizeInfo `json:"size"`
	Progress   bool     `json:"progress"`
	Remark     string   `json:"remark"`
}

// NewDefectInfo returns the record assigned to a freshly created defect.
func NewDefectInfo() DefectInfo {
	return DefectInfo{Member: "Wall"}
}

// LineRecord persists leader-line endpoints: p1 is the anchor.
type LineRecord struct {
	P1 [2]float64 `json:"p1"`
	P2 [2]float64 `json:"p2"`
}

// Record is the persisted form of a mark: the common fields plus whichever
// shape-specific fields the variant carries.
type Record struct {
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`

	InternalID string      `json:"internal_id,omitempty"`
	DisplayID  any         `json:"display_id,omitempty"`
	DefectInfo *DefectInfo `json:"defect_info,omitempty"`
	Line       *LineRecord `json:"line,omitempty"`

	Radius float64 `json:"radius,omitempty"`
	Size   float64 `json:"size,omitempty"`
	W      float64 `json:"w,omitempty"`
	H      float64 `json:"h,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// MemoRecord is the snapshot form of a memo stroke.
type MemoRecord struct {
	Type string      `json:"type"`
	P1   []float64   `json:"p1,omitempty"`
	P2   []float64   `json:"p2,omitempty"`
	Pts  [][]float64 `json:"pts,omitempty"`
}

// FromRecord reconstructs a mark of the recorded type and shape. Leader line
// and label are not rebuilt here; the controller reattaches them from the
// record afterward. Unknown type tags return false so corrupt or newer
// records are dropped instead of failing the whole restore.
func FromRecord(rec Record) (Mark, bool) {
	p := geometry.Point2D{X: rec.X, Y: rec.Y}

	switch rec.Type {
	case TypeCircle:
		r := rec.Radius
		if r <= 0 {
			r = DefaultCircleRadius
		}
		return NewCircleMarkWithRadius(p, r), true
	case TypeSquare:
		s := rec.Size
		if s <= 0 {
			s = DefaultSquareSize
		}
		return NewSquareMarkWithSize(p, s), true
	case TypeTriangle:
		s := rec.Size
		if s <= 0 {
			s = DefaultTriangleSize
		}
		return NewTriangleMarkWithSize(p, s), true
	case TypeSCurve, typeSCurveLegacy:
		w, h := rec.W, rec.H
		if w <= 0 {
			w = DefaultSCurveWidth
		}
		if h <= 0 {
			h = DefaultSCurveHeight
		}
		return NewSCurveMarkWithSize(p, w, h), true
	case TypeNoteText:
		return NewNoteText(p, rec.Text), true
	}
	return nil, false
}

// DisplayIDNumber extracts the numeric value of a persisted display id.
// Circles store plain ints (float64 after JSON decode); the oldest files
// stored strings like "D-7" whose numeric tail still participates in next-id
// calculation.
func DisplayIDNumber(v any) (int, bool) {
	switch id := v.(type) {
	case int:
		return id, true
	case float64:
		return int(id), true
	case string:
		parts := strings.Split(id, "-")
		n, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
