package main

import "github.com/lepinkainen/shelfmark/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
