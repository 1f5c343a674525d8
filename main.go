package main

import "github.com/wildstrudel/nosqlite/cmd"

func main() {
	cmd.Execute()
}
