package main

import "github.com/jmcleod/certsmith/cmd/certsmith/cmd"

func main() {
	cmd.Execute()
}
