package model

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

// TimeSignature is a meter change that becomes effective at Tick.
// The active signature at any tick is the last one whose Tick is <= that
// tick, defaulting to the first when none precedes.
type TimeSignature struct {
	Tick        uint64
	Numerator   uint8
	Denominator uint8
}

// RawSample is one bar-aligned window cut out of a source file. Start is
// inclusive, End exclusive, both in ticks at the source file's resolution.
// MIDI holds the self-contained fragment for [Start, End).
type RawSample struct {
	Path  string
	Start uint64
	End   uint64
	MIDI  *smf.SMF
}

// TokenizedSample carries one token sequence per track, produced on demand.
type TokenizedSample struct {
	Path   string  `json:"path"`
	Start  uint64  `json:"start"`
	End    uint64  `json:"end"`
	Tokens [][]int `json:"tokens"`
}

// TokenizedSamplePair is a contrastive training example. Distance is 0 for a
// same-file pair and 1 for a cross-file pair.
type TokenizedSamplePair struct {
	SampleA  TokenizedSample `json:"sampleA"`
	SampleB  TokenizedSample `json:"sampleB"`
	Distance int             `json:"distance"`
}

// DatasetItem is what indexed dataset access yields: a *TokenizedSample in
// unpaired mode, a *TokenizedSamplePair in paired mode.
type DatasetItem interface {
	datasetItem()
}

func (*TokenizedSample) datasetItem()     {}
func (*TokenizedSamplePair) datasetItem() {}
