package main

import (
	"os"

	"github.com/mailframe/mailframe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
