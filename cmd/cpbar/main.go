package main

import (
	"os"

	"cpbar/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
