package main

import "github.com/mcoot/omnigram/internal/cli"

func main() {
	cli.Execute()
}
