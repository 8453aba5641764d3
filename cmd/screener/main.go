package main

import (
	"crypto-screener/internal/cli"
)

func main() {
	cli.Execute()
}
