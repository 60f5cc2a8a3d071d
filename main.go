package main

import (
	"os"

	"github.com/skillvault/skillvault-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
