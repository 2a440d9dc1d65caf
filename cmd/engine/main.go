package main

import "github.com/repcard/engine/internal/cli"

func main() {
	cli.Execute()
}
