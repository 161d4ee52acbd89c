package schedule

import (
	"math"
	"time"
)

// Config carries every recognized scheduling option. Read-only once handed
// to a strategy; engine functions take it explicitly rather than reaching
// for global state.
type Config struct {
	FillRateVialsPerMin     float64
	CleanDurationHours      float64
	CleanWindowHours        float64
	ChangeoverSameTypeHours float64
	ChangeoverDiffTypeHours float64
	NumLines                int
	StartTime               time.Time
	StrategyTimeoutSeconds  float64
	MaxConcurrentLots       int // advisory; see DESIGN.md Open Question
}

// DefaultConfig returns the documented defaults from the spec's recognized
// options table.
func DefaultConfig() Config {
	return Config{
		FillRateVialsPerMin:     332,
		CleanDurationHours:      24,
		CleanWindowHours:        120,
		ChangeoverSameTypeHours: 4,
		ChangeoverDiffTypeHours: 8,
		NumLines:                1,
		StartTime:               time.Unix(0, 0).UTC(),
		StrategyTimeoutSeconds:  30,
		MaxConcurrentLots:       0,
	}
}

// Validate rejects impossible configs before any strategy runs.
func (c Config) Validate() error {
	if c.FillRateVialsPerMin <= 0 {
		return &ValidationError{Field: "fill_rate_vials_per_min", Value: c.FillRateVialsPerMin, Message: "must be positive"}
	}
	if c.CleanDurationHours < 0 {
		return &ValidationError{Field: "clean_duration_hours", Value: c.CleanDurationHours, Message: "must be non-negative"}
	}
	if c.CleanWindowHours <= 0 {
		return &ValidationError{Field: "clean_window_hours", Value: c.CleanWindowHours, Message: "must be positive"}
	}
	if c.ChangeoverSameTypeHours < 0 {
		return &ValidationError{Field: "changeover_same_type_hours", Value: c.ChangeoverSameTypeHours, Message: "must be non-negative"}
	}
	if c.ChangeoverDiffTypeHours < 0 {
		return &ValidationError{Field: "changeover_diff_type_hours", Value: c.ChangeoverDiffTypeHours, Message: "must be non-negative"}
	}
	if c.NumLines <= 0 {
		return &ValidationError{Field: "num_lines", Value: c.NumLines, Message: "must be a positive integer"}
	}
	if c.StrategyTimeoutSeconds <= 0 {
		return &ValidationError{Field: "strategy_timeout_seconds", Value: c.StrategyTimeoutSeconds, Message: "must be positive"}
	}
	if c.MaxConcurrentLots < 0 {
		return &ValidationError{Field: "max_concurrent_lots", Value: c.MaxConcurrentLots, Message: "must be non-negative"}
	}
	return nil
}

func secondsFromHours(h float64) int64 {
	return int64(math.Round(h * 3600))
}

// WindowCeilingSeconds is clean_window_hours expressed in seconds.
func WindowCeilingSeconds(c Config) int64 {
	return secondsFromHours(c.CleanWindowHours)
}

// CleanDurationSeconds is clean_duration_hours expressed in seconds.
func CleanDurationSeconds(c Config) int64 {
	return secondsFromHours(c.CleanDurationHours)
}

func changeoverSameSeconds(c Config) int64 {
	return secondsFromHours(c.ChangeoverSameTypeHours)
}

func changeoverDiffSeconds(c Config) int64 {
	return secondsFromHours(c.ChangeoverDiffTypeHours)
}
