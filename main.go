package main

import "github.com/notargets/gomdal/cmd"

func main() {
	cmd.Execute()
}
