package main

import "github.com/notefig/notefig/cmd/notefig/cmd"

func main() {
	cmd.Execute()
}
