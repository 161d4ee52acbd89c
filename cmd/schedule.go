package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pharmasched/fillsched/internal/schedule"
	"github.com/pharmasched/fillsched/internal/schedule/strategy"
)

var (
	scheduleLotsPath   string
	scheduleConfigPath string
	scheduleStrategy   string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run a single scheduling strategy over a lot set",
	RunE: func(cmd *cobra.Command, args []string) error {
		lots, err := loadLotSet(scheduleLotsPath)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(scheduleConfigPath)
		if err != nil {
			return err
		}
		if err := lots.Validate(); err != nil {
			return err
		}
		if err := lots.ValidateAgainstConfig(cfg); err != nil {
			return err
		}

		tag := schedule.StrategyTag(scheduleStrategy)
		strat, err := strategy.NewRegistry().Get(tag)
		if err != nil {
			return err
		}

		deadline := time.Now().Add(time.Duration(cfg.StrategyTimeoutSeconds) * time.Second)
		logrus.WithField("strategy", tag).Info("running strategy")
		result := strat.Run(context.Background(), lots, cfg, deadline)
		if result.Err != nil {
			return result.Err
		}

		snapshot := schedule.NewSnapshot(lots, cfg, result.Schedule)
		out, err := json.MarshalIndent(snapshot.Wire(), "", "  ")
		if err != nil {
			return fmt.Errorf("render output: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleLotsPath, "lots", "", "Path to a lot set CSV file (id,type,vials)")
	scheduleCmd.Flags().StringVar(&scheduleConfigPath, "config", "", "Path to a YAML config file (optional)")
	scheduleCmd.Flags().StringVar(&scheduleStrategy, "strategy", string(schedule.TagLPT), "Scheduling strategy: lpt, spt, cfs, smart, hybrid, milp")
	_ = scheduleCmd.MarkFlagRequired("lots")
}
