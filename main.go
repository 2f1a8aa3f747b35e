package main

import "github.com/agentic-research/tagsync/cmd"

func main() {
	cmd.Execute()
}
