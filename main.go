package main

import (
	"f1pitwall/cmd"
)

func main() {
	cmd.Execute()
}
