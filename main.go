package main

import "github.com/studhue/apiserver/cmd"

func main() {
	cmd.Execute()
}
