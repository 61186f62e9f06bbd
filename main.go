package main

import (
	"os"

	"github.com/codelio/codelio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
