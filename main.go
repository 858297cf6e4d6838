package main

import (
	"os"

	"github.com/autismart/autismart/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
