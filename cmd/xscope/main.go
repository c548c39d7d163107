package main

import (
	"os"

	_ "github.com/trickstertwo/xscope/logxconcern/provider"

	"github.com/trickstertwo/xscope/internal/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
