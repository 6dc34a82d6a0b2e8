package main

import "github.com/mcoot/tabletop-companion/internal/cli"

func main() {
	cli.Execute()
}
