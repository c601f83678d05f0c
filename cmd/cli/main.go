package main

import "cinetrack/cmd/cli/command"

func main() {
	command.Execute()
}
