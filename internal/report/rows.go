// Package report generates HWPX inspection reports from annotated floor plans.
//
// HWPX files are zip archives of OWPML XML. Building a valid document from
// scratch is impractical, so reports are produced from template files that
// carry placeholder text which gets substituted with the actual content.
package report

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"plan-marker/internal/mark"
)

// DefectRow is one line of the visual inspection defect table.
type DefectRow struct {
	No         int     `json:"no"`
	Location   string  `json:"location"`
	Member     string  `json:"member"`
	DefectType string  `json:"type"`
	WidthMM    float64 `json:"width_mm"`
	LengthM    float64 `json:"length_m"`
	Count      int     `json:"count_ea"`
	Progress   string  `json:"progress"`
	Note       string  `json:"note"`
}

// ExtractRows builds the defect table from an inspection's defect payload.
// The editor stores a snapshot with an "items" array; older files stored a
// flat id-to-fields map, which is still understood.
func ExtractRows(defects json.RawMessage) []DefectRow {
	if len(defects) == 0 {
		return nil
	}

	var snap struct {
		Items []mark.Record `json:"items"`
	}
	if err := json.Unmarshal(defects, &snap); err == nil && len(snap.Items) > 0 {
		return rowsFromItems(snap.Items)
	}

	var flat map[string]map[string]any
	if err := json.Unmarshal(defects, &flat); err == nil && len(flat) > 0 {
		return rowsFromFlatMap(flat)
	}
	return nil
}

func rowsFromItems(items []mark.Record) []DefectRow {
	var rows []DefectRow
	for _, rec := range items {
		if rec.Type != mark.TypeCircle || rec.DefectInfo == nil {
			continue
		}
		info := rec.DefectInfo

		no := len(rows) + 1
		if n, ok := mark.DisplayIDNumber(rec.DisplayID); ok {
			no = n
		}

		rows = append(rows, DefectRow{
			No:         no,
			Location:   info.Location,
			Member:     info.Member,
			DefectType: info.DefectType,
			WidthMM:    parseMeasure(info.Size.WidthMM),
			LengthM:    parseMeasure(info.Size.LengthM),
			Count:      parseCount(info.Size.CountEA),
			Progress:   progressFlag(info.Progress),
			Note:       info.Remark,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].No < rows[j].No })
	return rows
}

func rowsFromFlatMap(flat map[string]map[string]any) []DefectRow {
	ids := make([]string, 0, len(flat))
	for id := range flat {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var rows []DefectRow
	for i, id := range ids {
		d := flat[id]
		progress := "X"
		if s := stringField(d, "progress"); s == "O" {
			progress = "O"
		}
		count := int(numberField(d, "count", "count_ea"))
		if count == 0 {
			count = 1
		}
		rows = append(rows, DefectRow{
			No:         i + 1,
			Location:   stringField(d, "location"),
			Member:     stringField(d, "member"),
			DefectType: stringField(d, "type", "defect_type"),
			WidthMM:    numberField(d, "width_mm", "width"),
			LengthM:    numberField(d, "length_m", "length"),
			Count:      count,
			Progress:   progress,
			Note:       stringField(d, "note", "cause", "remark"),
		})
	}
	return rows
}

func stringField(d map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := d[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

func numberField(d map[string]any, keys ...string) float64 {
	for _, k := range keys {
		v, ok := d[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n
		case string:
			return parseMeasure(n)
		}
	}
	return 0
}

// parseMeasure reads a numeric prefix from free-text measurements such as
// "0.3mm" or "1.5".
func parseMeasure(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '.' || s[end] == '-' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}

func parseCount(s string) int {
	n := int(parseMeasure(s))
	if n <= 0 {
		return 1
	}
	return n
}

func progressFlag(progressing bool) string {
	if progressing {
		return "O"
	}
	return "X"
}
