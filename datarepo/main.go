package main

import "github.com/go-arrower/datarepo/datarepo/cmd"

func main() {
	cmd.Execute()
}
