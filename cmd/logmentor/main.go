package main

import "logmentor/internal/cli"

func main() {
	cli.Execute()
}
