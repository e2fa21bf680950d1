package midi

import (
	"bytes"
	"os"
	"sort"

	"github.com/hanhanhuhmanman/drumbot-roy/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ReadMidiFile parses a standard MIDI file from disk.
func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			e = errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, errors.Wrap(err, "reading midi file")
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, errors.Wrap(err, "parsing midi file")
	}

	return res, nil
}

// Resolution returns the file's ticks per quarter note. SMPTE-timed files
// are rejected.
func Resolution(mf *smf.SMF) (uint32, error) {
	mt, ok := mf.TimeFormat.(smf.MetricTicks)
	if !ok {
		return 0, errors.Errorf("unsupported time format %v, expected metric ticks", mf.TimeFormat)
	}
	return uint32(mt), nil
}

// TimeSignatures collects meter changes from all tracks, ordered by tick.
// When several land on the same tick the last one wins.
func TimeSignatures(mf *smf.SMF) []model.TimeSignature {
	var sigs []model.TimeSignature
	for _, track := range mf.Tracks {
		var absTicks uint64
		for _, ev := range track {
			absTicks += uint64(ev.Delta)
			var num, denom, cpt, dsqpq uint8
			if ev.Message.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq) {
				sigs = append(sigs, model.TimeSignature{
					Tick:        absTicks,
					Numerator:   num,
					Denominator: denom,
				})
			}
		}
	}
	sort.SliceStable(sigs, func(i, j int) bool {
		return sigs[i].Tick < sigs[j].Tick
	})

	var res []model.TimeSignature
	for _, sig := range sigs {
		if n := len(res); n > 0 && res[n-1].Tick == sig.Tick {
			res[n-1] = sig
			continue
		}
		res = append(res, sig)
	}
	return res
}

// MaxTick is the absolute tick of the last event in the file.
func MaxTick(mf *smf.SMF) uint64 {
	var max uint64
	for _, track := range mf.Tracks {
		var absTicks uint64
		for _, ev := range track {
			absTicks += uint64(ev.Delta)
		}
		if absTicks > max {
			max = absTicks
		}
	}
	return max
}

// NumNotes counts note starts across all tracks.
func NumNotes(mf *smf.SMF) int {
	var count int
	var ch, key, vel uint8
	for _, track := range mf.Tracks {
		for _, ev := range track {
			if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				count++
			}
		}
	}
	return count
}

// General MIDI reserves channel 10 (9 zero-based) for percussion.
const drumChannel = 9

func IsDrumTrack(track smf.Track) bool {
	var ch, key, vel uint8
	for _, ev := range track {
		if ev.Message.GetNoteOn(&ch, &key, &vel) || ev.Message.GetNoteOff(&ch, &key, &vel) {
			if ch == drumChannel {
				return true
			}
		}
	}
	return false
}

func hasNotes(track smf.Track) bool {
	var ch, key, vel uint8
	for _, ev := range track {
		if ev.Message.GetNoteOn(&ch, &key, &vel) || ev.Message.GetNoteOff(&ch, &key, &vel) {
			return true
		}
	}
	return false
}

// FilterDrumTracks keeps percussion tracks plus note-free conductor tracks
// (the latter carry tempo and meter events the fragments still need).
// The second return is the number of percussion tracks kept.
func FilterDrumTracks(mf *smf.SMF) (*smf.SMF, int) {
	var res smf.SMF
	res.TimeFormat = mf.TimeFormat

	var numDrumTracks int
	for _, track := range mf.Tracks {
		switch {
		case IsDrumTrack(track):
			numDrumTracks++
		case hasNotes(track):
			continue
		}
		res.Tracks = append(res.Tracks, track)
	}
	return &res, numDrumTracks
}
