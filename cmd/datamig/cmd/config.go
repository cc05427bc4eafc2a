// Copyright © 2024 One Concern

package cmd

import (
	"github.com/spf13/viper"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// bug in viper? Need to keep names of fields the same as the serialized names..
	Store    string `json:"store" yaml:"store"`       // Default data store directory
	LogLevel string `json:"loglevel" yaml:"loglevel"` // Default log level
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *CLIConfig) setParams(flags *paramsT) {
	if flags.store == "" {
		flags.store = c.Store
	}
	if flags.logLevel == "" && c.LogLevel != "" {
		flags.logLevel = c.LogLevel
	}
}
