package main

import (
	"tempovault-console/internal/cli"
)

func main() {
	cli.Execute()
}
