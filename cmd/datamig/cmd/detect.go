// Copyright © 2024 One Concern

package cmd

import (
	"github.com/oneconcern/datamig/pkg/store"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Reports the detected version of the store without touching it",
	Run: func(cmd *cobra.Command, args []string) {
		if params.store == "" {
			wrapFatalWithCodef(2, "a store directory is required (--store or config file)")
			return
		}
		infoLogger.Println(store.New(params.store).DetectVersion())
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
