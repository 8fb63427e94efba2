package main

import (
	"os"

	"github.com/DeiroLy/Safe-Tools/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
