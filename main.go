package main

import "github.com/openpic/openpic/cmd"

func main() {
	cmd.Execute()
}
