package main

import "github.com/lepinkainen/bibcat/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
