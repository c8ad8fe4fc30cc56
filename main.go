package main

import "github.com/sadopc/mirror/internal/cli"

func main() {
	cli.Execute()
}
