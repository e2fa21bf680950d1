// Package tokenizer turns MIDI fragments into per-track integer token
// sequences for model input.
package tokenizer

import (
	"github.com/hanhanhuhmanman/drumbot-roy/midi"
	"github.com/hanhanhuhmanman/drumbot-roy/util"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Tokenizer is the model-input encoder. Implementations must be pure: the
// same fragment always tokenizes to the same sequences.
type Tokenizer interface {
	Tokenize(mf *smf.SMF) ([][]int, error)
}

const NumVelocityBins = 8

// Token id layout: pitches, then velocity bins, then grid positions.
const (
	pitchOffset    = 0
	velocityOffset = 128
	positionOffset = velocityOffset + NumVelocityBins
)

// NoteTokenizer is the default encoder. Each note start becomes three
// tokens: its position on a 16th-note grid, its pitch, and one of eight
// velocity bins.
type NoteTokenizer struct{}

func NewNoteTokenizer() *NoteTokenizer {
	return &NoteTokenizer{}
}

func (t *NoteTokenizer) Tokenize(mf *smf.SMF) ([][]int, error) {
	tpb, err := midi.Resolution(mf)
	if err != nil {
		return nil, err
	}
	step := tpb / 4
	if step == 0 {
		step = 1
	}

	res := make([][]int, 0, len(mf.Tracks))
	var ch, key, vel uint8
	for _, track := range mf.Tracks {
		var tokens []int
		var absTicks uint64
		for _, ev := range track {
			absTicks += uint64(ev.Delta)
			if ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				position := int(absTicks / uint64(step))
				// velocity is 7-bit on the wire; a malformed byte must not
				// map outside the vocabulary
				bin := util.Min(int(vel)*NumVelocityBins/128, NumVelocityBins-1)
				tokens = append(tokens,
					positionOffset+position,
					pitchOffset+int(key),
					velocityOffset+bin,
				)
			}
		}
		res = append(res, tokens)
	}
	return res, nil
}
