package main

import "github.com/rageebridwan/newsmind/cmd"

func main() {
	cmd.Execute()
}
