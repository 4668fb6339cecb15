package main

import "github.com/verdict-ci/verdict/cmd"

func main() {
	cmd.Execute()
}
