package main

import (
	"os"

	"github.com/gitstage/gitstage/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
