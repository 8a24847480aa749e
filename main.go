package main

import (
	"AuthQ/cmd"
)

func main() {
	cmd.Execute()
}
