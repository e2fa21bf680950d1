package cmd

import (
	"fmt"

	"github.com/hanhanhuhmanman/drumbot-roy/chunk"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <shard>",
	Short: "Inspects a shard",
	Long:  `Inspects a shard`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		inspect(args[0])
	},
}

func inspect(path string) {
	samples := chunk.ReadShard(path)
	for i, s := range samples {
		var numTokens int
		for _, tokens := range s.Tokens {
			numTokens += len(tokens)
		}
		fmt.Printf("%v: %v [%v, %v) tracks=%v tokens=%v\n",
			i, s.Path, s.Start, s.End, len(s.Tokens), numTokens)
	}
}
