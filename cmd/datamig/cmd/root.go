// Copyright © 2024 One Concern

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/oneconcern/datamig/pkg/dlogger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datamig",
	Short: "Datamig upgrades local data stores across application releases",
	Long: `Datamig detects the on-disk layout of a local, file-based data store and runs
the ordered set of migrations needed to bring it up to a target application
version, persisting a checkpoint after each step so an interrupted upgrade
resumes where it left off.

The application embedding the store is expected to refuse to start when an
upgrade fails, rather than operate against a half-migrated store.
`,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&params.store, "store", "",
		"path to the data store directory")
	rootCmd.PersistentFlags().StringVar(&params.logLevel, "loglevel", dlogger.LogLevelInfo,
		"log level (info, debug, none)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("loglevel", dlogger.LogLevelInfo)
	if os.Getenv("DATAMIG_CONFIG") != "" {
		// Use config file from the flag.
		viper.SetConfigFile(os.Getenv("DATAMIG_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.datamig")
		viper.AddConfigPath("/etc/datamig")
		viper.SetConfigName("datamig")
	}

	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
	config.setParams(&params)
}
