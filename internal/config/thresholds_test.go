package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadThresholds_EmptyPathReturnsDefaults(t *testing.T) {
	got, err := LoadThresholds("")
	require.NoError(t, err)
	require.InDelta(t, 85, got.Productivity.TargetPct, 1e-9)
	require.InDelta(t, 180, got.Downtime.YellowMaxMinutes, 1e-9)
	require.Contains(t, got.HazardKeywords.High, "пожар")
	require.Len(t, got.Equipment, 6)
}

func TestLoadThresholds_FileLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	doc := `
productivity:
  target_pct: 90
  yellow_threshold_pct: 5
  red_threshold_pct: 15
water:
  yellow_over_pct: 3
  red_over_pct: 10
hazard_keywords:
  high: ["пожар"]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	got, err := LoadThresholds(path)
	require.NoError(t, err)
	require.InDelta(t, 90, got.Productivity.TargetPct, 1e-9)
	require.InDelta(t, 3, got.Water.YellowOverPct, 1e-9)
	require.Equal(t, []string{"пожар"}, got.HazardKeywords.High)
	// sections absent from the file keep their defaults
	require.InDelta(t, 60, got.Downtime.GreenMaxMinutes, 1e-9)
	require.Equal(t, "high", got.PhotoLabels["fire"])
}

func TestLoadThresholds_MissingFileErrors(t *testing.T) {
	_, err := LoadThresholds(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadThresholds_MalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("productivity: [not a map"), 0o644))

	_, err := LoadThresholds(path)
	require.Error(t, err)
}
