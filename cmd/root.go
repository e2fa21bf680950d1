package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "drumbot",
	Short: "Builds contrastive training corpora from MIDI files",
	Long:  `Builds contrastive training corpora from MIDI files.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
