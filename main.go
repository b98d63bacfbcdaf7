package main

import "github.com/tomas/iqdb/cmd"

func main() {
	cmd.Execute()
}
