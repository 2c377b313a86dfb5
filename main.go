package main

import "pingbot/cmd"

func main() {
	cmd.Execute()
}
