package main

import "github.com/agentic-research/flowmend/cmd"

func main() {
	cmd.Execute()
}
