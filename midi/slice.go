package midi

import (
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Slice cuts [start, end) out of mf into a new, self-contained file.
//
// Non-note events before the window (program changes, tempo, meter, track
// names) are pinned to the fragment's tick 0 so the fragment parses and
// plays on its own; events inside the window keep their position relative
// to start. Note events before the window are dropped, so a note sounding
// across the boundary loses its head; its note-off inside the window is
// kept, which consumers reading note starts ignore.
func Slice(mf *smf.SMF, start, end uint64) (*smf.SMF, error) {
	if end <= start {
		return nil, errors.Errorf("invalid slice range [%v, %v)", start, end)
	}
	if _, ok := mf.TimeFormat.(smf.MetricTicks); !ok {
		return nil, errors.Errorf("unsupported time format %v, expected metric ticks", mf.TimeFormat)
	}

	var res smf.SMF
	res.TimeFormat = mf.TimeFormat

	for _, track := range mf.Tracks {
		var newTrack smf.Track
		var absTicks uint64
		var trackTime uint64
		add := func(tick uint64, msg smf.Message) {
			newTrack = append(newTrack, smf.Event{
				Delta:   uint32(tick - trackTime),
				Message: msg,
			})
			trackTime = tick
		}

		for _, ev := range track {
			absTicks += uint64(ev.Delta)
			if ev.Message.Type() == smf.MetaEndOfTrackMsg {
				continue
			}
			isNote := ev.Message.Is(gomidi.NoteOnMsg) || ev.Message.Is(gomidi.NoteOffMsg)
			switch {
			case absTicks < start:
				if !isNote {
					add(0, ev.Message)
				}
			case absTicks < end:
				add(absTicks-start, ev.Message)
			}
		}

		newTrack.Close(0)
		res.Tracks = append(res.Tracks, newTrack)
	}

	return &res, nil
}
