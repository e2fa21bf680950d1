// Package dataset flattens bar-aligned samples from a directory of MIDI
// files into one shuffled, indexable corpus and serves tokenized items,
// single or paired, by numeric index.
package dataset

import (
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/hanhanhuhmanman/drumbot-roy/constants"
	"github.com/hanhanhuhmanman/drumbot-roy/extractor"
	"github.com/hanhanhuhmanman/drumbot-roy/midi"
	"github.com/hanhanhuhmanman/drumbot-roy/model"
	"github.com/hanhanhuhmanman/drumbot-roy/tokenizer"
	"github.com/hanhanhuhmanman/drumbot-roy/util"
)

type Options struct {
	BarsPerSample int
	// Paired switches indexed access from single samples to
	// similarity-labeled pairs.
	Paired bool
	// FilterOutEmptySamples drops windows containing no note starts.
	FilterOutEmptySamples bool
	// ShuffleFiles shuffles the discovered file list (never the samples
	// within a file) with a generator seeded by ShuffleSeed.
	ShuffleFiles bool
	ShuffleSeed  int64
	OnlyDrum     bool
	// Tokenizer overrides the default note tokenizer when non-nil.
	Tokenizer tokenizer.Tokenizer
	// Progress renders a progress bar during PrepareSamples.
	Progress bool
}

// DefaultOptions mirrors the knobs a training run typically wants:
// drum-only two-bar samples, empty windows dropped, seeded shuffle.
func DefaultOptions() Options {
	return Options{
		BarsPerSample:         2,
		FilterOutEmptySamples: true,
		ShuffleFiles:          true,
		ShuffleSeed:           constants.DefaultShuffleSeed,
		OnlyDrum:              true,
	}
}

type Dataset struct {
	paths    []string
	opts     Options
	ext      *extractor.Extractor
	tok      tokenizer.Tokenizer
	samples  []model.RawSample
	prepared bool
}

// New scans inputDir for .mid/.midi files and orders them, shuffled or not,
// deterministically. The shuffle uses a generator local to this Dataset, so
// instances never disturb each other's sequences. No extraction happens
// until PrepareSamples.
func New(inputDir string, opts Options) *Dataset {
	paths := util.GatherAllMidiPaths(inputDir)
	if opts.ShuffleFiles {
		rng := rand.New(rand.NewSource(opts.ShuffleSeed))
		rng.Shuffle(len(paths), func(i, j int) {
			paths[i], paths[j] = paths[j], paths[i]
		})
	}
	tok := opts.Tokenizer
	if tok == nil {
		tok = tokenizer.NewNoteTokenizer()
	}
	return &Dataset{
		paths: paths,
		opts:  opts,
		ext:   extractor.New(opts.BarsPerSample, opts.OnlyDrum),
		tok:   tok,
	}
}

// FilePaths is the file order extraction will follow, after any shuffle.
func (d *Dataset) FilePaths() []string {
	return d.paths
}

func (d *Dataset) Paired() bool {
	return d.opts.Paired
}

// PrepareSamples runs one sequential extraction pass over every discovered
// file and builds the flat sample index. It must complete before Len or any
// indexed access is valid.
func (d *Dataset) PrepareSamples() {
	var progress *mpb.Progress
	var bar *mpb.Bar
	if d.opts.Progress {
		progress = mpb.New(mpb.WithWidth(64))
		bar = progress.AddBar(int64(len(d.paths)),
			mpb.PrependDecorators(
				decor.Name("Preparing: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
	}

	for _, path := range d.paths {
		it := d.ext.ExtractSamples(path)
		for {
			sample, ok := it.Next()
			if !ok {
				break
			}
			if d.opts.FilterOutEmptySamples && midi.NumNotes(sample.MIDI) == 0 {
				continue
			}
			d.samples = append(d.samples, sample)
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if progress != nil {
		progress.Wait()
	}
	d.prepared = true
}

const prepareFirst = "run Dataset.PrepareSamples first to preprocess the samples"

// Len is the number of addressable items: the flat sample count, or twice
// that in paired mode (each sample anchors one same-file pair and one
// distant pair). ok is false before PrepareSamples.
func (d *Dataset) Len() (int, bool) {
	if !d.prepared {
		log.Warn(prepareFirst)
		return 0, false
	}
	if d.opts.Paired {
		return len(d.samples) * 2, true
	}
	return len(d.samples), true
}

// NumSamples is the flat sample count regardless of paired mode.
func (d *Dataset) NumSamples() (int, bool) {
	if !d.prepared {
		log.Warn(prepareFirst)
		return 0, false
	}
	return len(d.samples), true
}

// GetItem returns the item at index: a *model.TokenizedSample in unpaired
// mode, a *model.TokenizedSamplePair in paired mode. Tokenization happens
// on every call; nothing is cached. Calling before PrepareSamples logs a
// warning and returns nil. An out-of-range index is an error.
func (d *Dataset) GetItem(index int) (model.DatasetItem, error) {
	if !d.prepared {
		log.Warn(prepareFirst)
		return nil, nil
	}
	length, _ := d.Len()
	if index < 0 || index >= length {
		return nil, errors.Errorf("index %v out of range [0, %v)", index, length)
	}
	if !d.opts.Paired {
		return d.tokenize(d.samples[index])
	}
	return d.pairAt(index)
}

// SampleAt tokenizes the flat-index sample at index, ignoring paired mode.
func (d *Dataset) SampleAt(index int) (*model.TokenizedSample, error) {
	if !d.prepared {
		log.Warn(prepareFirst)
		return nil, nil
	}
	if index < 0 || index >= len(d.samples) {
		return nil, errors.Errorf("index %v out of range [0, %v)", index, len(d.samples))
	}
	return d.tokenize(d.samples[index])
}

// pairAt builds the pair anchored at samples[index/2].
//
// Even indices bias toward a same-file partner: the next flat-index sample,
// falling back to the previous one when the next is out of range or from
// another file, with the label verifying actual file identity. Odd indices
// jump half the corpus away and are labeled Distance == 1 unconditionally,
// even if the jump lands in the same file. The asymmetry is part of the
// labeling contract; see DESIGN.md.
func (d *Dataset) pairAt(index int) (model.DatasetItem, error) {
	n := len(d.samples)
	a := d.samples[index/2]

	var b model.RawSample
	distance := 1
	if index%2 == 0 {
		bIdx := index/2 + 1
		if bIdx >= n || d.samples[bIdx].Path != a.Path {
			bIdx = index/2 - 1
		}
		if bIdx < 0 {
			bIdx = n - 1
		}
		b = d.samples[bIdx]
		if a.Path == b.Path {
			distance = 0
		}
	} else {
		b = d.samples[(index/2+n/2)%n]
	}

	tokenizedA, err := d.tokenize(a)
	if err != nil {
		return nil, err
	}
	tokenizedB, err := d.tokenize(b)
	if err != nil {
		return nil, err
	}
	return &model.TokenizedSamplePair{
		SampleA:  *tokenizedA,
		SampleB:  *tokenizedB,
		Distance: distance,
	}, nil
}

func (d *Dataset) tokenize(sample model.RawSample) (*model.TokenizedSample, error) {
	tokens, err := d.tok.Tokenize(sample.MIDI)
	if err != nil {
		return nil, errors.Wrapf(err, "tokenizing %v [%v, %v)", sample.Path, sample.Start, sample.End)
	}
	return &model.TokenizedSample{
		Path:   sample.Path,
		Start:  sample.Start,
		End:    sample.End,
		Tokens: tokens,
	}, nil
}
