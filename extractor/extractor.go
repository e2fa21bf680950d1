// Package extractor segments a MIDI timeline into bar-aligned windows of a
// fixed bar count, honoring time-signature changes mid-file.
package extractor

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/hanhanhuhmanman/drumbot-roy/midi"
	"github.com/hanhanhuhmanman/drumbot-roy/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

type Extractor struct {
	BarsPerSample int
	OnlyDrum      bool
}

func New(barsPerSample int, onlyDrum bool) *Extractor {
	return &Extractor{
		BarsPerSample: barsPerSample,
		OnlyDrum:      onlyDrum,
	}
}

// ExtractSamples parses path and returns the window iterator. A file that
// cannot be read or segmented yields an empty iterator, never an error:
// one bad file must not poison a corpus build.
func (e *Extractor) ExtractSamples(path string) *Iterator {
	mf, err := midi.ReadMidiFile(path)
	if err != nil {
		log.Warn("skipping unreadable midi file", "path", path, "err", err)
		return &Iterator{done: true}
	}
	return e.ExtractSamplesFrom(path, mf)
}

// ExtractSamplesFrom is ExtractSamples for an already-parsed file.
func (e *Extractor) ExtractSamplesFrom(path string, mf *smf.SMF) *Iterator {
	if e.BarsPerSample < 1 {
		log.Warn("bars per sample must be at least 1", "path", path, "barsPerSample", e.BarsPerSample)
		return &Iterator{done: true}
	}
	tpb, err := midi.Resolution(mf)
	if err != nil {
		log.Warn("skipping midi file", "path", path, "err", err)
		return &Iterator{done: true}
	}
	sigs := midi.TimeSignatures(mf)
	if len(sigs) == 0 {
		// a file with no declared meter cannot be segmented into bars
		log.Debug("no time signatures, no samples", "path", path)
		return &Iterator{done: true}
	}
	if e.OnlyDrum {
		filtered, numDrumTracks := midi.FilterDrumTracks(mf)
		if numDrumTracks == 0 {
			log.Debug("no percussion tracks, no samples", "path", path)
			return &Iterator{done: true}
		}
		mf = filtered
	}

	return &Iterator{
		path:    path,
		mf:      mf,
		sigs:    sigs,
		tpb:     tpb,
		maxTick: midi.MaxTick(mf),
		bars:    e.BarsPerSample,
	}
}

// Iterator yields consecutive windows one at a time. Windows are contiguous
// and non-overlapping, with the first starting at tick 0. Re-running an
// extraction over the same input produces the same sequence.
type Iterator struct {
	path    string
	mf      *smf.SMF
	sigs    []model.TimeSignature
	tpb     uint32
	maxTick uint64
	bars    int
	start   uint64
	end     uint64
	done    bool
}

// Next returns the next window, or ok == false once the timeline is
// exhausted. A window whose fragment cannot be constructed is logged and
// skipped; a malformed meter aborts the remainder of the file but leaves
// the already-yielded prefix valid.
func (it *Iterator) Next() (model.RawSample, bool) {
	for !it.done && it.start < it.maxTick {
		for i := 0; i < it.bars; i++ {
			sig, ok := SignatureAt(it.end, it.sigs)
			if !ok {
				it.done = true
				return model.RawSample{}, false
			}
			length := barTicks(sig, it.tpb)
			if length == 0 {
				log.Warn("degenerate time signature, aborting extraction",
					"path", it.path, "tick", it.end,
					"numerator", sig.Numerator, "denominator", sig.Denominator)
				it.done = true
				return model.RawSample{}, false
			}
			it.end += length
		}

		start, end := it.start, it.end
		it.start = it.end

		frag, err := midi.Slice(it.mf, start, end)
		if err != nil {
			log.Warn("skipping window, slice failed",
				"path", it.path, "start", start, "end", end, "err", err)
			continue
		}
		return model.RawSample{
			Path:  it.path,
			Start: start,
			End:   end,
			MIDI:  frag,
		}, true
	}

	it.done = true
	return model.RawSample{}, false
}

// SignatureAt returns the last time signature effective at or before tick,
// defaulting to the first when none precedes. ok is false only for an empty
// list.
func SignatureAt(tick uint64, sigs []model.TimeSignature) (model.TimeSignature, bool) {
	if len(sigs) == 0 {
		return model.TimeSignature{}, false
	}
	i := sort.Search(len(sigs), func(i int) bool {
		return sigs[i].Tick > tick
	})
	if i == 0 {
		return sigs[0], true
	}
	return sigs[i-1], true
}

// barTicks is the bar length in whole ticks:
// (numerator / (denominator/4)) * ticksPerBeat, truncated.
func barTicks(sig model.TimeSignature, ticksPerBeat uint32) uint64 {
	if sig.Denominator == 0 {
		return 0
	}
	return uint64(sig.Numerator) * 4 * uint64(ticksPerBeat) / uint64(sig.Denominator)
}
