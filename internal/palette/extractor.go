package palette

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	_ "github.com/gen2brain/avif"
)

// Extraction is a Result plus the intermediate palette that produced it.
type Extraction struct {
	Result       Result         `json:"result"`
	Palette      []Candidate    `json:"palette"`
	Roles        Roles          `json:"roles"`
	SourceWidth  int            `json:"sourceWidth"`
	SourceHeight int            `json:"sourceHeight"`
	SampleWidth  int            `json:"sampleWidth"`
	SampleHeight int            `json:"sampleHeight"`
	Quantized    int            `json:"quantized"`
	Filtered     int            `json:"filtered"`
	Synthesized  int            `json:"synthesized"`
	Options      ExtractOptions `json:"options"`
}

type Option func(*Extractor)

// WithRandom replaces the source used for random fallback colors.
func WithRandom(random RandomSource) Option {
	return func(e *Extractor) {
		e.random = random
	}
}

type Extractor struct {
	mu     sync.Mutex
	random RandomSource
}

func NewExtractor(options ...Option) *Extractor {
	seed := uint64(time.Now().UnixNano())
	extractor := &Extractor{random: rand.New(rand.NewPCG(seed, seed>>17|1))}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

func (e *Extractor) ExtractFromPath(path string, options ExtractOptions) (Extraction, error) {
	file, err := os.Open(path)
	if err != nil {
		return failedExtraction(options), fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	return e.ExtractFromReader(file, options)
}

func (e *Extractor) ExtractFromReader(reader io.Reader, options ExtractOptions) (Extraction, error) {
	decoded, _, err := image.Decode(reader)
	if err != nil {
		return failedExtraction(options), fmt.Errorf("decode image: %w", err)
	}

	return e.ExtractFromImage(decoded, options), nil
}

// ExtractFromImage runs the whole pipeline. It cannot fail: degenerate
// images fall through to synthesized colors and role defaults.
func (e *Extractor) ExtractFromImage(img image.Image, options ExtractOptions) Extraction {
	normalized := options.normalized()

	samples := Sample(img, normalized.SampleSize, normalized.WorkerCount)
	quantized := Quantize(samples.Pixels)
	filtered := Filter(quantized, normalized.AreaThreshold, normalized.SimilarityThreshold)
	boosted := Boost(filtered, normalized.SpreadThreshold)
	pool := Boost(quantized, normalized.SpreadThreshold)
	diverse := Diversify(boosted, pool)
	full, truncated := Synthesize(diverse, normalized.MinColorCount, normalized.SimilarityThreshold, lockedSource{extractor: e})
	final := PromoteAccent(full, truncated, normalized.MinColorCount)
	roles := Categorize(final)

	extraction := Extraction{
		Result:       Format(final, roles),
		Palette:      final,
		Roles:        roles,
		SampleWidth:  samples.Width,
		SampleHeight: samples.Height,
		Quantized:    len(quantized),
		Filtered:     len(filtered),
		Synthesized:  maxInt(len(full)-len(diverse), 0),
		Options:      normalized,
	}
	if img != nil {
		extraction.SourceWidth = img.Bounds().Dx()
		extraction.SourceHeight = img.Bounds().Dy()
	}

	return extraction
}

func failedExtraction(options ExtractOptions) Extraction {
	return Extraction{
		Result:  EmptyResult(),
		Palette: []Candidate{},
		Options: options.normalized(),
	}
}

type lockedSource struct {
	extractor *Extractor
}

func (s lockedSource) IntN(n int) int {
	s.extractor.mu.Lock()
	defer s.extractor.mu.Unlock()
	if s.extractor.random == nil {
		return globalSource{}.IntN(n)
	}
	return s.extractor.random.IntN(n)
}
