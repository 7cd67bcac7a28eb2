package main

import "github.com/jjenkins/liturgical/cmd"

func main() {
	cmd.Execute()
}
