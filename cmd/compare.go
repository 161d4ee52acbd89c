package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pharmasched/fillsched/internal/schedule"
	"github.com/pharmasched/fillsched/internal/schedule/compare"
	"github.com/pharmasched/fillsched/internal/schedule/strategy"
)

var (
	compareLotsPath   string
	compareConfigPath string
	compareStrategies string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run several scheduling strategies concurrently and rank the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		lots, err := loadLotSet(compareLotsPath)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(compareConfigPath)
		if err != nil {
			return err
		}
		if err := lots.Validate(); err != nil {
			return err
		}
		if err := lots.ValidateAgainstConfig(cfg); err != nil {
			return err
		}

		tags, err := parseTags(compareStrategies)
		if err != nil {
			return err
		}

		deadline := time.Now().Add(time.Duration(cfg.StrategyTimeoutSeconds) * time.Second)
		comparator := compare.New(strategy.NewRegistry(), logrus.StandardLogger())

		logrus.WithField("strategies", tags).Info("comparing strategies")
		report, err := comparator.Compare(context.Background(), lots, cfg, tags, deadline)
		if err != nil {
			return err
		}

		type rankedEntry struct {
			Strategy string                `json:"strategy"`
			Wire     schedule.ScheduleWire `json:"result,omitempty"`
			Error    string                `json:"error,omitempty"`
		}
		var entries []rankedEntry
		for _, r := range compare.Ranked(report, lots, cfg) {
			entry := rankedEntry{Strategy: string(r.Tag)}
			if r.Err != nil {
				entry.Error = r.Err.Error()
			} else {
				snapshot := schedule.NewSnapshot(lots, cfg, r.Schedule)
				entry.Wire = snapshot.Wire()
			}
			entries = append(entries, entry)
		}

		out, err := json.MarshalIndent(struct {
			Best   string        `json:"best"`
			Ranked []rankedEntry `json:"ranked"`
		}{Best: string(report.BestTag), Ranked: entries}, "", "  ")
		if err != nil {
			return fmt.Errorf("render output: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	},
}

func parseTags(csv string) ([]schedule.StrategyTag, error) {
	parts := strings.Split(csv, ",")
	tags := make([]schedule.StrategyTag, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tags = append(tags, schedule.StrategyTag(p))
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("no strategies given")
	}
	return tags, nil
}

func init() {
	compareCmd.Flags().StringVar(&compareLotsPath, "lots", "", "Path to a lot set CSV file (id,type,vials)")
	compareCmd.Flags().StringVar(&compareConfigPath, "config", "", "Path to a YAML config file (optional)")
	compareCmd.Flags().StringVar(&compareStrategies, "strategies", "lpt,spt,cfs,smart,hybrid,milp", "Comma-separated strategy tags to compare")
	_ = compareCmd.MarkFlagRequired("lots")
}
