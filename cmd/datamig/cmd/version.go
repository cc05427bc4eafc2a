// Copyright © 2024 One Concern

package cmd

import (
	"github.com/oneconcern/datamig/pkg/migrate/migrations"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version of the most recent known migration",
	Run: func(cmd *cobra.Command, args []string) {
		infoLogger.Println(migrations.LatestIntroducedIn())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
