// Package chunk persists a prepared dataset's tokenized samples into
// size-bounded shard files plus a manifest.
package chunk

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hanhanhuhmanman/drumbot-roy/constants"
	"github.com/hanhanhuhmanman/drumbot-roy/dataset"
	"github.com/hanhanhuhmanman/drumbot-roy/model"
	"github.com/hanhanhuhmanman/drumbot-roy/util"
)

func makeShard(samples []model.TokenizedSample) model.ShardOverview {
	var o model.ShardOverview
	o.Filename = uuid.New().String() + ".dat"
	o.FirstPath = samples[0].Path
	o.LastPath = samples[len(samples)-1].Path
	o.NumSamples = len(samples)

	buf := new(bytes.Buffer)
	encoder := gob.NewEncoder(buf)
	if err := encoder.Encode(samples); err != nil {
		panic("error encoding shard: " + err.Error())
	}

	filename := filepath.Join(constants.GetOutDir(), o.Filename)
	if err := os.WriteFile(filename, buf.Bytes(), 0777); err != nil {
		panic("Write failed for shard file: " + err.Error())
	}
	return o
}

// rough per-sample footprint; gob varints make the true size smaller
func sampleSize(s model.TokenizedSample) int {
	size := len(s.Path) + 16
	for _, tokens := range s.Tokens {
		size += 8 * len(tokens)
	}
	return size
}

// CreateAll tokenizes every sample of a prepared dataset, writes the shards
// into the out dir, and records the manifest next to them.
func CreateAll(ds *dataset.Dataset) []model.ShardOverview {
	numSamples, ok := ds.NumSamples()
	if !ok {
		return nil
	}

	var res []model.ShardOverview
	var curr []model.TokenizedSample
	var size int
	for i := 0; i < numSamples; i++ {
		sample, err := ds.SampleAt(i)
		if err != nil {
			panic("could not tokenize sample: " + err.Error())
		}
		curr = append(curr, *sample)
		size += sampleSize(*sample)

		isLast := i == numSamples-1
		if size > constants.PreferredShardSize || isLast {
			res = append(res, makeShard(curr))
			size = 0
			curr = nil
		}
	}

	util.CreateBinary(filepath.Join(constants.GetOutDir(), constants.ShardsFile), res)
	return res
}

// ReadShard loads one shard file back into memory.
func ReadShard(path string) []model.TokenizedSample {
	return util.ReadBinaryOrPanic[[]model.TokenizedSample](path)
}

// ReadManifest loads the shard overviews written by CreateAll.
func ReadManifest(outDir string) []model.ShardOverview {
	return util.ReadBinaryOrPanic[[]model.ShardOverview](filepath.Join(outDir, constants.ShardsFile))
}
