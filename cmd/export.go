package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hanhanhuhmanman/drumbot-roy/chunk"
	"github.com/hanhanhuhmanman/drumbot-roy/constants"
	"github.com/hanhanhuhmanman/drumbot-roy/dataset"
	"github.com/hanhanhuhmanman/drumbot-roy/util"
)

var exportFlags struct {
	bars      int
	seed      int64
	noShuffle bool
	keepEmpty bool
	allTracks bool
}

func init() {
	exportCmd.Flags().IntVar(&exportFlags.bars, "bars", 2, "bars per sample")
	exportCmd.Flags().Int64Var(&exportFlags.seed, "seed", constants.DefaultShuffleSeed, "file shuffle seed")
	exportCmd.Flags().BoolVar(&exportFlags.noShuffle, "no-shuffle", false, "keep the sorted file order")
	exportCmd.Flags().BoolVar(&exportFlags.keepEmpty, "keep-empty", false, "keep windows without notes")
	exportCmd.Flags().BoolVar(&exportFlags.allTracks, "all-tracks", false, "extract from all tracks, not just percussion")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <midi-dir>",
	Short: "Extracts samples and writes tokenized shards",
	Long:  `Extracts samples and writes tokenized shards`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runExport(args[0])
	},
}

func runExport(dir string) {
	opts := dataset.DefaultOptions()
	opts.BarsPerSample = exportFlags.bars
	opts.ShuffleSeed = exportFlags.seed
	opts.ShuffleFiles = !exportFlags.noShuffle
	opts.FilterOutEmptySamples = !exportFlags.keepEmpty
	opts.OnlyDrum = !exportFlags.allTracks
	opts.Progress = true

	util.RecreateDir(constants.GetOutDir())
	ds := dataset.New(dir, opts)
	ds.PrepareSamples()
	numSamples, _ := ds.NumSamples()
	shards := chunk.CreateAll(ds)
	log.Info("export complete",
		"files", len(ds.FilePaths()),
		"samples", numSamples,
		"shards", len(shards),
		"out", constants.GetOutDir())
}
