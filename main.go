package main

import "github.com/brogergvhs/featsnap/cmd"

func main() {
	cmd.Execute()
}
