package main

import "github.com/emiliopalmerini/ocgbuilder/internal/cli"

func main() {
	cli.Execute()
}
