package main

import "agentskill/cli"

func main() {
	cli.Execute()
}
