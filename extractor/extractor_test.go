package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hanhanhuhmanman/drumbot-roy/midi"
	"github.com/hanhanhuhmanman/drumbot-roy/model"
	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type testNote struct {
	tick uint64
	ch   uint8
	key  uint8
}

// buildTestSMF assembles a two-track file: a conductor track carrying the
// time signatures and one note track. Notes must be in ascending tick order.
func buildTestSMF(tpb uint32, sigs []model.TimeSignature, notes []testNote) *smf.SMF {
	mf := smf.New()
	mf.TimeFormat = smf.MetricTicks(tpb)

	var conductor smf.Track
	var last uint64
	for _, sig := range sigs {
		conductor.Add(uint32(sig.Tick-last), smf.MetaTimeSig(sig.Numerator, sig.Denominator, 24, 8))
		last = sig.Tick
	}
	conductor.Close(0)
	mf.Add(conductor)

	var track smf.Track
	last = 0
	noteLen := uint64(tpb / 4)
	for _, n := range notes {
		track.Add(uint32(n.tick-last), gomidi.NoteOn(n.ch, n.key, 100))
		track.Add(uint32(noteLen), gomidi.NoteOff(n.ch, n.key))
		last = n.tick + noteLen
	}
	track.Close(0)
	mf.Add(track)
	return mf
}

func collect(it *Iterator) []model.RawSample {
	var res []model.RawSample
	for {
		sample, ok := it.Next()
		if !ok {
			return res
		}
		res = append(res, sample)
	}
}

func TestTwoBarWindowsInFourFour(t *testing.T) {
	// 4 bars of 4/4 at 480 ticks per beat, two bars per sample
	mf := buildTestSMF(480,
		[]model.TimeSignature{{Tick: 0, Numerator: 4, Denominator: 4}},
		[]testNote{{0, 9, 36}, {960, 9, 38}, {3840, 9, 36}, {7200, 9, 42}},
	)
	e := New(2, false)
	samples := collect(e.ExtractSamplesFrom("a.mid", mf))

	assert := assert.New(t)
	assert.Equal(len(samples), 2)
	assert.Equal(samples[0].Start, uint64(0))
	assert.Equal(samples[0].End, uint64(3840))
	assert.Equal(samples[1].Start, uint64(3840))
	assert.Equal(samples[1].End, uint64(7680))
	assert.Equal(samples[0].Path, "a.mid")
	assert.NotNil(samples[0].MIDI)
}

func TestNoTimeSignaturesYieldsNothing(t *testing.T) {
	mf := buildTestSMF(480, nil, []testNote{{0, 9, 36}, {960, 9, 38}})
	e := New(2, false)
	samples := collect(e.ExtractSamplesFrom("a.mid", mf))
	assert.Empty(t, samples)
}

func TestOnlyDrumWithNoPercussionYieldsNothing(t *testing.T) {
	mf := buildTestSMF(480,
		[]model.TimeSignature{{Tick: 0, Numerator: 4, Denominator: 4}},
		[]testNote{{0, 0, 60}, {960, 0, 64}},
	)
	e := New(2, true)
	samples := collect(e.ExtractSamplesFrom("a.mid", mf))
	assert.Empty(t, samples)
}

func TestOnlyDrumKeepsPercussion(t *testing.T) {
	mf := buildTestSMF(480,
		[]model.TimeSignature{{Tick: 0, Numerator: 4, Denominator: 4}},
		[]testNote{{0, 9, 36}, {960, 9, 38}},
	)
	e := New(2, true)
	samples := collect(e.ExtractSamplesFrom("a.mid", mf))

	assert := assert.New(t)
	assert.Equal(len(samples), 1)
	assert.Equal(midi.NumNotes(samples[0].MIDI), 2)
}

func TestWindowsContiguousAcrossMeterChange(t *testing.T) {
	// two bars of 4/4 then 7/8; bar lengths 1920 and 1680 ticks
	mf := buildTestSMF(480,
		[]model.TimeSignature{
			{Tick: 0, Numerator: 4, Denominator: 4},
			{Tick: 3840, Numerator: 7, Denominator: 8},
		},
		[]testNote{{0, 9, 36}, {1920, 9, 38}, {3840, 9, 36}, {5520, 9, 42}, {7000, 9, 36}},
	)
	e := New(1, false)
	samples := collect(e.ExtractSamplesFrom("a.mid", mf))

	assert := assert.New(t)
	assert.Equal(len(samples), 4)
	assert.Equal(samples[0].Start, uint64(0))
	for i := 0; i+1 < len(samples); i++ {
		assert.Equal(samples[i].End, samples[i+1].Start)
	}
	assert.Equal(samples[0].End-samples[0].Start, uint64(1920))
	assert.Equal(samples[1].End-samples[1].Start, uint64(1920))
	assert.Equal(samples[2].End-samples[2].Start, uint64(1680))
	assert.Equal(samples[3].End-samples[3].Start, uint64(1680))
}

func TestUnreadableFileYieldsNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mid")
	if err := os.WriteFile(path, []byte("this is not a midi file"), 0666); err != nil {
		t.Fatal(err)
	}

	e := New(2, false)
	samples := collect(e.ExtractSamples(path))
	assert.Empty(t, samples)
}

func TestMissingFileYieldsNothing(t *testing.T) {
	e := New(2, false)
	samples := collect(e.ExtractSamples(filepath.Join(t.TempDir(), "absent.mid")))
	assert.Empty(t, samples)
}

func TestExtractionIsDeterministic(t *testing.T) {
	mf := buildTestSMF(480,
		[]model.TimeSignature{
			{Tick: 0, Numerator: 4, Denominator: 4},
			{Tick: 1920, Numerator: 3, Denominator: 4},
		},
		[]testNote{{0, 9, 36}, {960, 9, 38}, {2400, 9, 42}, {4000, 9, 36}},
	)
	e := New(2, false)
	first := collect(e.ExtractSamplesFrom("a.mid", mf))
	second := collect(e.ExtractSamplesFrom("a.mid", mf))

	assert := assert.New(t)
	assert.Equal(len(first), len(second))
	for i := range first {
		assert.Equal(first[i].Start, second[i].Start)
		assert.Equal(first[i].End, second[i].End)
	}
}

func TestSignatureAt(t *testing.T) {
	sigs := []model.TimeSignature{
		{Tick: 0, Numerator: 4, Denominator: 4},
		{Tick: 1920, Numerator: 3, Denominator: 4},
		{Tick: 3840, Numerator: 7, Denominator: 8},
	}

	assert := assert.New(t)

	sig, ok := SignatureAt(0, sigs)
	assert.True(ok)
	assert.Equal(sig.Numerator, uint8(4))

	sig, _ = SignatureAt(1919, sigs)
	assert.Equal(sig.Numerator, uint8(4))

	sig, _ = SignatureAt(1920, sigs)
	assert.Equal(sig.Numerator, uint8(3))

	sig, _ = SignatureAt(100000, sigs)
	assert.Equal(sig.Numerator, uint8(7))

	// a query before the first declared signature defaults to it
	late := []model.TimeSignature{{Tick: 960, Numerator: 6, Denominator: 8}}
	sig, ok = SignatureAt(0, late)
	assert.True(ok)
	assert.Equal(sig.Numerator, uint8(6))

	_, ok = SignatureAt(0, nil)
	assert.False(ok)
}

func TestBarTicks(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(barTicks(model.TimeSignature{Numerator: 4, Denominator: 4}, 480), uint64(1920))
	assert.Equal(barTicks(model.TimeSignature{Numerator: 7, Denominator: 8}, 480), uint64(1680))
	assert.Equal(barTicks(model.TimeSignature{Numerator: 3, Denominator: 4}, 960), uint64(2880))
	assert.Equal(barTicks(model.TimeSignature{Numerator: 4, Denominator: 0}, 480), uint64(0))
}
