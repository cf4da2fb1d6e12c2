package report

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// TemplateEngine renders an HWPX file by copying a template archive and
// substituting placeholder text inside its section XML.
type TemplateEngine struct {
	TemplatePath string
}

// NewTemplateEngine creates an engine for the given template file.
func NewTemplateEngine(templatePath string) *TemplateEngine {
	return &TemplateEngine{TemplatePath: templatePath}
}

// Render writes a copy of the template to outPath with every placeholder
// occurrence in the section XML replaced.
func (e *TemplateEngine) Render(outPath string, replacements map[string]string) error {
	zin, err := zip.OpenReader(e.TemplatePath)
	if err != nil {
		return fmt.Errorf("open template %s: %w", e.TemplatePath, err)
	}
	defer zin.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer out.Close()

	zout := zip.NewWriter(out)
	for _, item := range zin.File {
		rc, err := item.Open()
		if err != nil {
			return fmt.Errorf("read template entry %s: %w", item.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read template entry %s: %w", item.Name, err)
		}

		if isSectionXML(item.Name) {
			data = substitute(data, replacements)
		}

		header := item.FileHeader
		header.Method = zip.Deflate
		w, err := zout.CreateHeader(&header)
		if err != nil {
			return fmt.Errorf("write report entry %s: %w", item.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write report entry %s: %w", item.Name, err)
		}
	}

	if err := zout.Close(); err != nil {
		return fmt.Errorf("finalize report: %w", err)
	}
	return nil
}

func isSectionXML(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), "contents/section0.xml")
}

// substitute replaces placeholders as raw bytes. Placeholders are plain
// ASCII tokens like __TITLE__, so they cannot span XML entities, and values
// are escaped before insertion.
func substitute(data []byte, replacements map[string]string) []byte {
	for k, v := range replacements {
		data = bytes.ReplaceAll(data, []byte(k), []byte(xmlEscape(v)))
	}
	return data
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}
