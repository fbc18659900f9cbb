package main

import (
	"encoding/json"
	"fmt"

	"hotel-pms/models"
	"hotel-pms/services"

	"github.com/spf13/cobra"
)

var automationCmd = &cobra.Command{
	Use:   "automation",
	Short: "Inspect or trigger automation jobs",
}

var automationRunCmd = &cobra.Command{
	Use:       "run <no-show|night-audit|dynamic-pricing|ota-sync>",
	Short:     "Run one automation job now and print the recorded run",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"no-show", "night-audit", "dynamic-pricing", "ota-sync"},
	RunE: func(cmd *cobra.Command, args []string) error {
		job, ok := services.JobForSlug(args[0])
		if !ok {
			return fmt.Errorf("unknown job %q", args[0])
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		a := newApp(cfg, db, false)
		defer a.close()

		run, jobErr := a.automation.Run(cmd.Context(), job, models.TriggerManual)
		if run != nil {
			out, err := json.MarshalIndent(run, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		}
		return jobErr
	},
}
