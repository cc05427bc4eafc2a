// Copyright © 2024 One Concern

package cmd

type paramsT struct {
	store    string
	target   string
	logLevel string
}

var params paramsT
