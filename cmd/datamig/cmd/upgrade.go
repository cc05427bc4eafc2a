// Copyright © 2024 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/datamig/pkg/dlogger"
	"github.com/oneconcern/datamig/pkg/migrate"
	"github.com/oneconcern/datamig/pkg/migrate/migrations"
	"github.com/oneconcern/datamig/pkg/model"
	"github.com/spf13/cobra"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Runs the migrations needed to bring the store up to the target version",
	Long: `Runs the migrations needed to bring the store up to the target version.

The target defaults to the version of the most recent known migration. A
checkpoint is written after every completed migration, so re-running upgrade
after a failure resumes from the first incomplete step.`,
	Run: func(cmd *cobra.Command, args []string) {
		if params.store == "" {
			wrapFatalWithCodef(2, "a store directory is required (--store or config file)")
			return
		}
		target := resolveTarget()

		logger, err := dlogger.GetLogger(params.logLevel)
		if err != nil {
			wrapFatalln("set log level", err)
			return
		}

		err = migrations.Run(context.Background(), params.store, target, migrate.WithLogger(logger))
		if err != nil {
			wrapFatalln("upgrade failed", err)
			return
		}
		infoLogger.Printf("store %s is at version %s", params.store, target)
	},
}

func resolveTarget() *model.Version {
	if params.target == "" {
		return migrations.LatestIntroducedIn()
	}
	target, err := model.NewVersion(params.target)
	if err != nil {
		wrapFatalln("invalid target version "+params.target, err)
		return nil
	}
	return target
}

func init() {
	upgradeCmd.Flags().StringVar(&params.target, "target", "",
		"target application version (defaults to the latest known migration)")
	rootCmd.AddCommand(upgradeCmd)
}
