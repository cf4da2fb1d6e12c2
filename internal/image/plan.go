// Package image provides floor plan image loading and annotated rendering.
package image

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"plan-marker/pkg/geometry"

	_ "golang.org/x/image/tiff"
)

// Plan represents a loaded floor plan image.
type Plan struct {
	Path  string      // Original file path
	Image image.Image // Decoded pixel data
	DPI   float64     // Scan resolution, 0 when unknown
}

// Load decodes a floor plan image from the specified path.
func Load(path string) (*Plan, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode plan image: %w", err)
	}

	plan := &Plan{Path: path, Image: img}

	// Scanned plans usually carry their resolution in TIFF metadata.
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".tiff" || ext == ".tif" {
		if dpi, err := extractTIFFDPI(path); err == nil {
			plan.DPI = dpi
		}
	}

	return plan, nil
}

// Width returns the image width in pixels.
func (p *Plan) Width() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (p *Plan) Height() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (p *Plan) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(p.Width()),
		Height: float64(p.Height()),
	}
}

// MillimetersPerPixel returns the real-world scale of the scan, or 0 when
// the resolution is unknown.
func (p *Plan) MillimetersPerPixel() float64 {
	if p.DPI == 0 {
		return 0
	}
	return 25.4 / p.DPI
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*.tiff, *.tif, *.png, *.jpg, *.jpeg)"
}
