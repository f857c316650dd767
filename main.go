package main

import (
	"os"

	"github.com/moguard/subctl/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
