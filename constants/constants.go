package constants

import "os"

func GetOutDir() string {
	path := os.Getenv("OUT_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

// The two standard extensions, matched case-sensitively.
const (
	MidiExt     = ".mid"
	MidiExtLong = ".midi"
)

const ShardsFile = "allShards.dat"

const DefaultShuffleSeed = 42

// Gob-encoded tokenized samples are small; this keeps shard count low
// without producing unwieldy files.
const PreferredShardSize = 64 * 1024 * 1024
