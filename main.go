package main

import "github.com/RyanBlaney/brainwave-monitor/cmd"

func main() {
	cmd.Execute()
}
