package main

import "github.com/metaloot/registry/internal/cli"

func main() {
	cli.Execute()
}
