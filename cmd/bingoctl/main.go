package main

import "github.com/zn-har/Bingo/internal/cli"

func main() {
	cli.Execute()
}
