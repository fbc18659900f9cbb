package main

import (
	"hotel-pms/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		if err := config.AutoMigrate(db); err != nil {
			return err
		}
		log.Info("✅ Migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the bootstrap system admin and default automation settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		if err := config.AutoMigrate(db); err != nil {
			return err
		}
		if err := config.SeedDatabase(db, cfg.Seed, cfg.Server.BcryptCost); err != nil {
			return err
		}
		log.Info("✅ Seed complete")
		return nil
	},
}
