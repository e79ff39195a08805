package main

import (
	"github.com/brk3/arena/cmd"
)

func main() {
	cmd.Execute()
}
