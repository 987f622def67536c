package main

import (
	"github.com/habiliai/mcpchat/cmd/mcpchat/cmd"
)

func main() {
	cmd.Execute()
}
