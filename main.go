package main

import "github.com/pgident/pgident/cmd"

func main() {
	cmd.Execute()
}
