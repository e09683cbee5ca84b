package main

import "github.com/maxvaer/extfuzz/cmd"

func main() {
	cmd.Execute()
}
