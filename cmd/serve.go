package cmd

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/hanhanhuhmanman/drumbot-roy/constants"
	"github.com/hanhanhuhmanman/drumbot-roy/dataset"
	"github.com/hanhanhuhmanman/drumbot-roy/db"
	"github.com/hanhanhuhmanman/drumbot-roy/model"
)

var serveFlags struct {
	bars      int
	seed      int64
	addr      string
	metadata  bool
	allTracks bool
}

var ds *dataset.Dataset

func init() {
	serveCmd.Flags().IntVar(&serveFlags.bars, "bars", 2, "bars per sample")
	serveCmd.Flags().Int64Var(&serveFlags.seed, "seed", constants.DefaultShuffleSeed, "file shuffle seed")
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", ":8080", "listen address")
	serveCmd.Flags().BoolVar(&serveFlags.metadata, "metadata", false, "enrich responses from the metadata table")
	serveCmd.Flags().BoolVar(&serveFlags.allTracks, "all-tracks", false, "extract from all tracks, not just percussion")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve <midi-dir>",
	Short: "Serves a prepared dataset over HTTP",
	Long:  `Serves a prepared dataset over HTTP`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		serve(args[0])
	},
}

// InitDataset builds and prepares the served dataset. Split out so tests
// can drive the handlers without a listener.
func InitDataset(dir string, bars int, onlyDrum bool) {
	opts := dataset.DefaultOptions()
	opts.BarsPerSample = bars
	opts.ShuffleSeed = serveFlags.seed
	opts.Paired = true
	opts.OnlyDrum = onlyDrum
	ds = dataset.New(dir, opts)
	ds.PrepareSamples()
}

// NewRouter wires the dataset endpoints. InitDataset must have run first.
func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/stats", HandleStats).Methods("GET")
	router.HandleFunc("/samples/{index:[0-9]+}", HandleSample).Methods("GET")
	router.HandleFunc("/pairs/{index:[0-9]+}", HandlePair).Methods("GET")
	return cors.Default().Handler(router)
}

func serve(dir string) {
	InitDataset(dir, serveFlags.bars, !serveFlags.allTracks)
	handler := NewRouter()

	numSamples, _ := ds.NumSamples()
	log.Info("serving dataset", "addr", serveFlags.addr, "samples", numSamples)
	log.Fatal(http.ListenAndServe(serveFlags.addr, handler))
}

func HandleStats(w http.ResponseWriter, r *http.Request) {
	length, _ := ds.Len()
	numSamples, _ := ds.NumSamples()
	res := model.StatsResponse{
		NumFiles:   len(ds.FilePaths()),
		NumSamples: numSamples,
		Length:     length,
		Paired:     ds.Paired(),
	}
	json.NewEncoder(w).Encode(res)
}

func HandleSample(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sample, err := ds.SampleAt(index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	res := model.SampleResponse{TokenizedSample: *sample}
	if serveFlags.metadata {
		res.Metadata = lookupMetadata(sample.Path)
	}
	json.NewEncoder(w).Encode(res)
}

func HandlePair(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	item, err := ds.GetItem(index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	pair, ok := item.(*model.TokenizedSamplePair)
	if !ok {
		http.Error(w, "dataset is not in paired mode", http.StatusBadRequest)
		return
	}
	res := model.PairResponse{TokenizedSamplePair: *pair}
	if serveFlags.metadata {
		res.MetadataA = lookupMetadata(pair.SampleA.Path)
		res.MetadataB = lookupMetadata(pair.SampleB.Path)
	}
	json.NewEncoder(w).Encode(res)
}

func lookupMetadata(path string) *model.MidiMetadata {
	filename := filepath.Base(path)
	metadatas, err := db.GetMidiMetadatas([]string{filename})
	if err != nil {
		log.Warn("metadata lookup failed", "filename", filename, "error", err)
		return nil
	}
	if m, ok := metadatas[filename]; ok {
		return &m
	}
	return nil
}
