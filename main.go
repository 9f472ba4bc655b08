package main

import "github.com/chukul/profilectl/cmd"

func main() {
	cmd.Execute()
}
