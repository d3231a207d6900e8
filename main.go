package main

import "github.com/relloyd/geniepipe/cmd"

func main() {
	cmd.Execute()
}
