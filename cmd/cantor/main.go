package main

import (
	"github.com/cantorhq/cantor/internal/cli"
)

func main() {
	cli.Execute()
}
