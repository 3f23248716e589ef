package main

import "github.com/haydnv/tbon/cmd/tbon/cmd"

func main() {
	cmd.Execute()
}
