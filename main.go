package main

import (
	"os"

	"github.com/eastboundjoe/aviation-study-guide/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
