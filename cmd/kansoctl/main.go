// Package main implements kansoctl, a command-line front end to the habit
// analytics engine.
package main

import (
	"os"
	_ "time/tzdata"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
