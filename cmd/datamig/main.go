// Copyright © 2024 One Concern

package main

import (
	"github.com/oneconcern/datamig/cmd/datamig/cmd"
)

func main() {
	cmd.Execute()
}
