package main

import (
	"github.com/velocitymatch/vmctl/pkg/cli"
)

func main() {
	cli.Execute()
}
