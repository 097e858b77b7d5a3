package main

import "github.com/mcoot/ladder/internal/cli"

func main() {
	cli.Execute()
}
