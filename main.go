package main

import (
	"github.com/hanhanhuhmanman/drumbot-roy/cmd"
)

func main() {
	cmd.Execute()
}
