// Package config loads application settings and input-tuning values.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Tuning holds canvas input thresholds. The defaults were tuned against
// desktop mouse input; keep them configurable so other display densities can
// recalibrate without a rebuild.
type Tuning struct {
	PressHoldDelay    time.Duration `json:"pressHoldDelay" mapstructure:"pressHoldDelay"`
	EditCoalesceDelay time.Duration `json:"editCoalesceDelay" mapstructure:"editCoalesceDelay"`

	AnchorHandleRadius float64 `json:"anchorHandleRadius" mapstructure:"anchorHandleRadius"`
	MemoStrokeHitWidth float64 `json:"memoStrokeHitWidth" mapstructure:"memoStrokeHitWidth"`

	MinMemoLineLength float64 `json:"minMemoLineLength" mapstructure:"minMemoLineLength"`
	MinFreePathExtent float64 `json:"minFreePathExtent" mapstructure:"minFreePathExtent"`
	DragCreateSlack   float64 `json:"dragCreateSlack" mapstructure:"dragCreateSlack"`

	MarkScaleMin  float64 `json:"markScaleMin" mapstructure:"markScaleMin"`
	MarkScaleMax  float64 `json:"markScaleMax" mapstructure:"markScaleMax"`
	MarkScaleStep float64 `json:"markScaleStep" mapstructure:"markScaleStep"`
	ViewZoomStep  float64 `json:"viewZoomStep" mapstructure:"viewZoomStep"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("dataDir", "./projects")
	viper.SetDefault("report.templatePath", "")
	viper.SetDefault("report.outputDir", "./reports")

	viper.SetDefault("tuning.pressHoldDelay", "500ms")
	viper.SetDefault("tuning.editCoalesceDelay", "300ms")
	viper.SetDefault("tuning.anchorHandleRadius", 10.0)
	viper.SetDefault("tuning.memoStrokeHitWidth", 10.0)
	viper.SetDefault("tuning.minMemoLineLength", 8.0)
	viper.SetDefault("tuning.minFreePathExtent", 6.0)
	viper.SetDefault("tuning.dragCreateSlack", 10.0)
	viper.SetDefault("tuning.markScaleMin", 0.6)
	viper.SetDefault("tuning.markScaleMax", 2.5)
	viper.SetDefault("tuning.markScaleStep", 1.1)
	viper.SetDefault("tuning.viewZoomStep", 1.15)
}

// Load reads configuration from plan_marker.cfg.json in configDir and sets
// default values. A missing file is not an error: the editor runs on defaults.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName("plan_marker.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetTuning returns the canvas input thresholds.
func GetTuning() Tuning {
	setDefaults()
	return Tuning{
		PressHoldDelay:     viper.GetDuration("tuning.pressHoldDelay"),
		EditCoalesceDelay:  viper.GetDuration("tuning.editCoalesceDelay"),
		AnchorHandleRadius: viper.GetFloat64("tuning.anchorHandleRadius"),
		MemoStrokeHitWidth: viper.GetFloat64("tuning.memoStrokeHitWidth"),
		MinMemoLineLength:  viper.GetFloat64("tuning.minMemoLineLength"),
		MinFreePathExtent:  viper.GetFloat64("tuning.minFreePathExtent"),
		DragCreateSlack:    viper.GetFloat64("tuning.dragCreateSlack"),
		MarkScaleMin:       viper.GetFloat64("tuning.markScaleMin"),
		MarkScaleMax:       viper.GetFloat64("tuning.markScaleMax"),
		MarkScaleStep:      viper.GetFloat64("tuning.markScaleStep"),
		ViewZoomStep:       viper.GetFloat64("tuning.viewZoomStep"),
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
