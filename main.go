package main

import "github.com/tanq16/memfetch/cmd"

func main() {
	cmd.Execute()
}
