package main

import (
	"os"

	"github.com/civicdata/nyc311-ingress/cmd/nyc311/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
