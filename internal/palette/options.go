package palette

import (
	"fmt"
	"runtime"
)

const (
	minSampleSize     = 16
	maxSampleSize     = 1024
	minColorCount     = 1
	maxColorCount     = 32
	maxSimilarity     = 400
	defaultWorkerCap  = 8
	maxWorkerCap      = 12
	areaLooseningRate = 0.5
)

var defaultExtractOptions = ExtractOptions{
	SampleSize:          200,
	AreaThreshold:       0.01,
	SimilarityThreshold: 20,
	MinColorCount:       5,
	SpreadThreshold:     100,
	WorkerCount:         0,
}

type ExtractOptions struct {
	SampleSize          int     `json:"sampleSize" yaml:"sampleSize"`
	AreaThreshold       float64 `json:"areaThreshold" yaml:"areaThreshold"`
	SimilarityThreshold float64 `json:"similarityThreshold" yaml:"similarityThreshold"`
	MinColorCount       int     `json:"minColorCount" yaml:"minColorCount"`
	SpreadThreshold     int     `json:"spreadThreshold" yaml:"spreadThreshold"`
	WorkerCount         int     `json:"workerCount" yaml:"workerCount"`
}

func DefaultExtractOptions() ExtractOptions {
	return defaultExtractOptions
}

// ValidateExtractOptions rejects values that normalization would otherwise
// clamp. Zero still means "use the default".
func ValidateExtractOptions(options ExtractOptions) error {
	if options.SampleSize != 0 && (options.SampleSize < minSampleSize || options.SampleSize > maxSampleSize) {
		return fmt.Errorf("sample size %d out of range [%d, %d]", options.SampleSize, minSampleSize, maxSampleSize)
	}
	if options.AreaThreshold < 0 || options.AreaThreshold > 1 {
		return fmt.Errorf("area threshold %g out of range [0, 1]", options.AreaThreshold)
	}
	if options.SimilarityThreshold < 0 || options.SimilarityThreshold > maxSimilarity {
		return fmt.Errorf("similarity threshold %g out of range [0, %d]", options.SimilarityThreshold, maxSimilarity)
	}
	if options.MinColorCount != 0 && (options.MinColorCount < minColorCount || options.MinColorCount > maxColorCount) {
		return fmt.Errorf("min color count %d out of range [%d, %d]", options.MinColorCount, minColorCount, maxColorCount)
	}
	if options.SpreadThreshold < 0 || options.SpreadThreshold > 255 {
		return fmt.Errorf("spread threshold %d out of range [0, 255]", options.SpreadThreshold)
	}
	if options.WorkerCount < 0 {
		return fmt.Errorf("worker count %d must not be negative", options.WorkerCount)
	}
	return nil
}

func NormalizeExtractOptions(options ExtractOptions) ExtractOptions {
	return options.normalized()
}

func (o ExtractOptions) normalized() ExtractOptions {
	normalized := o

	if normalized.SampleSize <= 0 {
		normalized.SampleSize = defaultExtractOptions.SampleSize
	}
	normalized.SampleSize = clampInt(normalized.SampleSize, minSampleSize, maxSampleSize)

	if normalized.AreaThreshold <= 0 {
		normalized.AreaThreshold = defaultExtractOptions.AreaThreshold
	}
	normalized.AreaThreshold = clampFloat(normalized.AreaThreshold, 0, 1)

	if normalized.SimilarityThreshold <= 0 {
		normalized.SimilarityThreshold = defaultExtractOptions.SimilarityThreshold
	}
	normalized.SimilarityThreshold = clampFloat(normalized.SimilarityThreshold, 0, maxSimilarity)

	if normalized.MinColorCount <= 0 {
		normalized.MinColorCount = defaultExtractOptions.MinColorCount
	}
	normalized.MinColorCount = clampInt(normalized.MinColorCount, minColorCount, maxColorCount)

	if normalized.SpreadThreshold <= 0 {
		normalized.SpreadThreshold = defaultExtractOptions.SpreadThreshold
	}
	normalized.SpreadThreshold = clampInt(normalized.SpreadThreshold, 0, 255)

	if normalized.WorkerCount <= 0 {
		defaultWorkers := runtime.GOMAXPROCS(0) - 1
		if defaultWorkers < 1 {
			defaultWorkers = 1
		}
		normalized.WorkerCount = minInt(defaultWorkers, defaultWorkerCap)
	}
	maxWorkers := maxInt(1, minInt(runtime.GOMAXPROCS(0), maxWorkerCap))
	normalized.WorkerCount = clampInt(normalized.WorkerCount, 1, maxWorkers)

	return normalized
}
