package main

import (
	"os"

	"periodtracker/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCommand()))
}
