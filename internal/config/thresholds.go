package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mill-data/internal/hazard"
)

// Thresholds is the structured threshold/keyword document consumed
// read-only by the signal engine and the hazard detector. Loaded from YAML
// when THRESHOLDS_PATH is set, otherwise the compiled-in defaults apply.
type Thresholds struct {
	Productivity struct {
		TargetPct          float64 `yaml:"target_pct"`
		YellowThresholdPct float64 `yaml:"yellow_threshold_pct"`
		RedThresholdPct    float64 `yaml:"red_threshold_pct"`
	} `yaml:"productivity"`
	Downtime struct {
		GreenMaxMinutes  float64 `yaml:"green_max_minutes"`
		YellowMaxMinutes float64 `yaml:"yellow_max_minutes"`
	} `yaml:"downtime"`
	Water struct {
		YellowOverPct float64 `yaml:"yellow_over_pct"`
		RedOverPct    float64 `yaml:"red_over_pct"`
	} `yaml:"water"`
	Priority struct {
		DowntimeWeight         float64 `yaml:"downtime_weight"`
		WaterOverWeight        float64 `yaml:"water_over_weight"`
		ProductivityDropWeight float64 `yaml:"productivity_drop_weight"`
	} `yaml:"priority"`
	HazardKeywords hazard.Keywords `yaml:"hazard_keywords"`
	// PhotoLabels maps classifier labels to hazard severities; unmapped
	// labels produce no hazard.
	PhotoLabels map[string]string `yaml:"photo_labels"`
	// Equipment is the canonical six-equipment set of the downtime history.
	Equipment []string `yaml:"equipment"`
}

// DefaultThresholds returns the shipped threshold document.
func DefaultThresholds() Thresholds {
	t := Thresholds{}
	t.Productivity.TargetPct = 85
	t.Productivity.YellowThresholdPct = 5
	t.Productivity.RedThresholdPct = 15
	t.Downtime.GreenMaxMinutes = 60
	t.Downtime.YellowMaxMinutes = 180
	t.Water.YellowOverPct = 5
	t.Water.RedOverPct = 15
	t.Priority.DowntimeWeight = 1
	t.Priority.WaterOverWeight = 10
	t.Priority.ProductivityDropWeight = 10
	t.HazardKeywords = hazard.Keywords{
		High:   []string{"травм", "взрыв", "пожар", "газ", "авар"},
		Medium: []string{"возгоран", "задымлен", "утечк", "замыкан", "перегрев", "обрушен"},
		Low:    []string{"износ", "вибрац", "течь", "трещин", "окислен"},
	}
	t.PhotoLabels = map[string]string{
		"fire":        "high",
		"smoke":       "high",
		"spill":       "medium",
		"corrosion":   "low",
		"no_helmet":   "medium",
		"obstruction": "low",
	}
	t.Equipment = []string{
		"Мельница №1", "Мельница №2", "Мельница №3",
		"Мельница №4", "Мельница №5", "Дробилка",
	}
	return t
}

// LoadThresholds reads the YAML document at path, layered over defaults.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	return t, nil
}
