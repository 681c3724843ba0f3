package main

import "github.com/mvp-joe/declcat/internal/cli"

func main() {
	cli.Execute()
}
