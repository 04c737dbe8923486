package main

import "github.com/veriscope/veriscope/cmd/veriscope/cmd"

func main() {
	cmd.Execute()
}
