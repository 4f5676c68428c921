package main

import (
	"os"

	"github.com/corbenferris/figjam-plantuml/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
