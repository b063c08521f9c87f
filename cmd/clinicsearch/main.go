package main

import "clinicsearch/internal/cli"

func main() {
	cli.Execute()
}
