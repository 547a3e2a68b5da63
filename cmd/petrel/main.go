package main

import (
	"os"

	"github.com/petrelhq/petrel/internal/petrel"
)

func main() {
	os.Exit(petrel.Main())
}
