package main

import (
	"os"

	"github.com/hey-granth/silo/pkg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
