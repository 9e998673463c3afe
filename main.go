package main

import "github.com/matchscope/matchscope/cmd"

func main() {
	cmd.Execute()
}
