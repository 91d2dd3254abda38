package main

import "timelinec/internal/cli"

func main() {
	cli.Execute()
}
