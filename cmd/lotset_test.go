package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLotSet_ParsesCSV(t *testing.T) {
	path := writeTempFile(t, "lots.csv", "id,type,vials\nA,VialE,300000\nB,VialH,450000\n")

	lots, err := loadLotSet(path)
	assert.NoError(t, err)
	assert.Len(t, lots.Lots, 2)
	assert.Equal(t, "A", lots.Lots[0].ID)
	assert.Equal(t, "VialE", lots.Lots[0].Type)
	assert.Equal(t, 300000, lots.Lots[0].Vials)
}

func TestLoadLotSet_MissingColumn(t *testing.T) {
	path := writeTempFile(t, "lots.csv", "id,vials\nA,300000\n")

	_, err := loadLotSet(path)
	assert.Error(t, err)
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "num_lines: 3\nclean_window_hours: 100\n")

	cfg, err := loadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, 3, cfg.NumLines)
	assert.Equal(t, 100.0, cfg.CleanWindowHours)
	assert.Equal(t, 332.0, cfg.FillRateVialsPerMin) // untouched default
}

func TestLoadConfig_ParsesStartTime(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "start_time: \"2026-01-01T00:00:00Z\"\n")

	cfg, err := loadConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, 2026, cfg.StartTime.Year())
}

func TestLoadConfig_RejectsBadStartTime(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "start_time: \"not-a-time\"\n")

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_RejectsUnknownField(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "num_linez: 3\n")

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := loadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, 1, cfg.NumLines)
}

func TestParseTags(t *testing.T) {
	tags, err := parseTags("lpt, spt ,smart")
	assert.NoError(t, err)
	assert.Len(t, tags, 3)

	_, err = parseTags("")
	assert.Error(t, err)
}
