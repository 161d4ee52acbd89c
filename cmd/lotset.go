package cmd

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pharmasched/fillsched/internal/schedule"
)

// configFile mirrors schedule.Config for YAML loading -- all fields
// optional, falling back to schedule.DefaultConfig() where absent.
type configFile struct {
	FillRateVialsPerMin     *float64 `yaml:"fill_rate_vials_per_min"`
	CleanDurationHours      *float64 `yaml:"clean_duration_hours"`
	CleanWindowHours        *float64 `yaml:"clean_window_hours"`
	ChangeoverSameTypeHours *float64 `yaml:"changeover_same_type_hours"`
	ChangeoverDiffTypeHours *float64 `yaml:"changeover_diff_type_hours"`
	NumLines                *int     `yaml:"num_lines"`
	StartTime               *string  `yaml:"start_time"`
	StrategyTimeoutSeconds  *float64 `yaml:"strategy_timeout_seconds"`
	MaxConcurrentLots       *int     `yaml:"max_concurrent_lots"`
}

// loadConfig reads a YAML config file at path, overlaying schedule.DefaultConfig()
// with whatever fields are present. Strict about unknown fields, the way the
// teacher's defaults.yaml loader is, so a typo'd key fails loudly rather than
// silently falling back to the default.
func loadConfig(path string) (schedule.Config, error) {
	cfg := schedule.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var file configFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if file.FillRateVialsPerMin != nil {
		cfg.FillRateVialsPerMin = *file.FillRateVialsPerMin
	}
	if file.CleanDurationHours != nil {
		cfg.CleanDurationHours = *file.CleanDurationHours
	}
	if file.CleanWindowHours != nil {
		cfg.CleanWindowHours = *file.CleanWindowHours
	}
	if file.ChangeoverSameTypeHours != nil {
		cfg.ChangeoverSameTypeHours = *file.ChangeoverSameTypeHours
	}
	if file.ChangeoverDiffTypeHours != nil {
		cfg.ChangeoverDiffTypeHours = *file.ChangeoverDiffTypeHours
	}
	if file.NumLines != nil {
		cfg.NumLines = *file.NumLines
	}
	if file.StartTime != nil {
		start, err := time.Parse(time.RFC3339, *file.StartTime)
		if err != nil {
			return cfg, fmt.Errorf("parse config %s: start_time: %w", path, err)
		}
		cfg.StartTime = start
	}
	if file.StrategyTimeoutSeconds != nil {
		cfg.StrategyTimeoutSeconds = *file.StrategyTimeoutSeconds
	}
	if file.MaxConcurrentLots != nil {
		cfg.MaxConcurrentLots = *file.MaxConcurrentLots
	}
	return cfg, cfg.Validate()
}

// loadLotSet reads a lot set from a CSV file with header "id,type,vials".
func loadLotSet(path string) (schedule.LotSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return schedule.LotSet{}, fmt.Errorf("open lot set %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return schedule.LotSet{}, fmt.Errorf("parse lot set %s: %w", path, err)
	}
	if len(records) == 0 {
		return schedule.LotSet{}, fmt.Errorf("lot set %s has no rows", path)
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, want := range []string{"id", "type", "vials"} {
		if _, ok := col[want]; !ok {
			return schedule.LotSet{}, fmt.Errorf("lot set %s: missing column %q", path, want)
		}
	}

	lots := make([]schedule.Lot, 0, len(records)-1)
	for _, row := range records[1:] {
		vials, err := strconv.Atoi(row[col["vials"]])
		if err != nil {
			return schedule.LotSet{}, fmt.Errorf("lot set %s: vials column: %w", path, err)
		}
		lots = append(lots, schedule.Lot{
			ID:    row[col["id"]],
			Type:  row[col["type"]],
			Vials: vials,
		})
	}
	return schedule.LotSet{Lots: lots}, nil
}
