package main

import (
	"os"

	"github.com/grovetools/pilot/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
