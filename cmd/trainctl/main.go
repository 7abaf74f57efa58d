package main

import "github.com/mcoot/dominotrain/internal/cli"

func main() {
	cli.Execute()
}
