package main

import "accent-detector/cmd"

func main() {
	cmd.Execute()
}
