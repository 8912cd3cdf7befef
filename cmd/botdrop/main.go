package main

import "botdrop/internal/cli"

func main() {
	cli.Execute()
}
