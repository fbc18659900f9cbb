package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hotel-pms",
	Short: "Hotel property management backend",
	Long: `hotel-pms serves the REST API used by the admin, receptionist,
operational-manager and system-admin portals, and runs the night audit,
no-show, dynamic pricing and channel sync jobs.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (env vars override it)")

	automationCmd.AddCommand(automationRunCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(automationCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
