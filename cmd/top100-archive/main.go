package main

import "github.com/pfrederiksen/top100-archive/internal/cli"

func main() {
	cli.Execute()
}
