package main

import "github.com/toolgate/toolgate/cmd"

func main() {
	cmd.Execute()
}
