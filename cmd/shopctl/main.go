package main

import "perfumeshop/cmd/shopctl/commands"

func main() {
	commands.Execute()
}
