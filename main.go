package main

import (
	"os"

	"github.com/baileyram/somewherescout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
