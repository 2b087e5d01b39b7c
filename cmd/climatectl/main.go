package main

import (
	"os"

	"climate-server/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
